package downloader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/moffa90/go-wtptp/firmware"
	"github.com/moffa90/go-wtptp/internal/devicetest"
	"github.com/moffa90/go-wtptp/protocol"
	"github.com/moffa90/go-wtptp/transport"
)

// Mock logger for testing
type MockLogger struct {
	debugMsgs []string
	infoMsgs  []string
	errorMsgs []string
}

func (l *MockLogger) Debug(msg string, kv ...interface{}) {
	l.debugMsgs = append(l.debugMsgs, msg)
}

func (l *MockLogger) Info(msg string, kv ...interface{}) {
	l.infoMsgs = append(l.infoMsgs, msg)
}

func (l *MockLogger) Error(msg string, kv ...interface{}) {
	l.errorMsgs = append(l.errorMsgs, msg)
}

func bundleOf(boot []byte, apps ...[]byte) *firmware.Bundle {
	b := &firmware.Bundle{Boot: firmware.FromBytes("boot.bin", firmware.RoleBoot, boot)}
	for i, app := range apps {
		name := fmt.Sprintf("app%d.bin", i+1)
		b.Applications = append(b.Applications, firmware.FromBytes(name, firmware.RoleApplication, app))
	}
	return b
}

func pattern(n int) []byte {
	data := make([]byte, n)
	for i := range data {
		data[i] = byte(i * 7)
	}
	return data
}

// newTestSession wires a session to a fake link replaying reply.
func newTestSession(t *testing.T, reply []byte, opts ...Option) (*Session, *devicetest.FakeLink) {
	t.Helper()
	link := devicetest.NewFakeLink(reply)
	opts = append([]Option{WithTimeout(200 * time.Millisecond)}, opts...)
	sess := New(link, opts...)
	t.Cleanup(func() {
		_ = sess.Close()
		_ = link.Close()
	})
	return sess, link
}

func TestNew(t *testing.T) {
	link := devicetest.NewFakeLink(nil)
	defer link.Close()

	tests := []struct {
		name    string
		options []Option
		want    time.Duration
	}{
		{name: "with no options", want: DefaultTimeout},
		{name: "with timeout", options: []Option{WithTimeout(3 * time.Second)}, want: 3 * time.Second},
		{name: "negative timeout ignored", options: []Option{WithTimeout(-1)}, want: DefaultTimeout},
		{
			name: "with all options",
			options: []Option{
				WithTimeout(time.Second),
				WithLogger(&MockLogger{}),
				WithProgressCallback(func(Progress) {}),
			},
			want: time.Second,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sess := New(link, tt.options...)
			defer sess.Close()

			if sess.config.Timeout != tt.want {
				t.Errorf("Timeout = %v, want %v", sess.config.Timeout, tt.want)
			}
			if sess.Counter() != protocol.InitialCounter {
				t.Errorf("Counter() = %d, want %d", sess.Counter(), protocol.InitialCounter)
			}
			if sess.Phase() != PhaseDisconnected {
				t.Errorf("Phase() = %v, want %v", sess.Phase(), PhaseDisconnected)
			}
		})
	}
}

func TestNewPanicsOnNilDevice(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("New() with nil device should panic")
		}
	}()
	New(nil)
}

func TestHandshake(t *testing.T) {
	script := devicetest.NewScript().Handshake()
	sess, link := newTestSession(t, script.Device())

	if err := sess.Handshake(context.Background()); err != nil {
		t.Fatalf("Handshake() error = %v", err)
	}
	if !bytes.Equal(link.Written(), script.Host()) {
		t.Errorf("host wrote % X\nwant % X", link.Written(), script.Host())
	}
	if sess.Phase() != PhaseSynced {
		t.Errorf("Phase() = %v, want %v", sess.Phase(), PhaseSynced)
	}
}

func TestGetVersion(t *testing.T) {
	want := protocol.DeviceInfo{
		Version:     [4]byte{1, 2, 3, 4},
		BuildDate:   0x20231105,
		ProcessorID: "PXA9",
	}
	script := devicetest.NewScript().Version(want)
	sess, _ := newTestSession(t, script.Device())

	info, err := sess.GetVersion(context.Background())
	if err != nil {
		t.Fatalf("GetVersion() error = %v", err)
	}
	if *info != want {
		t.Errorf("GetVersion() = %+v, want %+v", *info, want)
	}
	if sess.Phase() != PhaseVersioned {
		t.Errorf("Phase() = %v, want %v", sess.Phase(), PhaseVersioned)
	}
}

func TestGetVersionBadTrailer(t *testing.T) {
	reply := devicetest.EncodeVersion(devicetest.DefaultVersion)
	reply[len(reply)-1] = 0xFF
	sess, _ := newTestSession(t, reply)

	_, err := sess.GetVersion(context.Background())
	if !errors.Is(err, transport.ErrMismatch) {
		t.Fatalf("GetVersion() error = %v, want ErrMismatch", err)
	}
	if !strings.Contains(err.Error(), protocol.FrameVersionTrailer) {
		t.Errorf("error %q does not name the trailer", err)
	}
}

func TestGetImageType(t *testing.T) {
	sess, _ := newTestSession(t, devicetest.EncodeImageType(devicetest.TypeOBMI))

	got, err := sess.GetImageType(context.Background())
	if err != nil {
		t.Fatalf("GetImageType() error = %v", err)
	}
	if got != devicetest.TypeOBMI {
		t.Errorf("GetImageType() = %s, want %s", got, devicetest.TypeOBMI)
	}
}

func TestTransferImageGrants(t *testing.T) {
	image := pattern(100)

	tests := []struct {
		name       string
		script     *devicetest.Script
		wantBlocks []uint64
	}{
		{
			name:       "single grant",
			script:     devicetest.NewScript().Request(100, 100).Data(image),
			wantBlocks: []uint64{100},
		},
		{
			name: "device splits into 40/40/20",
			script: devicetest.NewScript().
				Request(100, 40).Data(image[:40]).
				Request(60, 40).Data(image[40:80]).
				Request(20, 20).Data(image[80:]),
			wantBlocks: []uint64{40, 40, 20},
		},
		{
			name:       "one byte at a time",
			script:     devicetest.NewScript().Transfer(image, 1),
			wantBlocks: repeat(1, 100),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sess, link := newTestSession(t, tt.script.Device())
			img := firmware.FromBytes("app.bin", firmware.RoleApplication, image)

			var blocks []uint64
			err := sess.TransferImage(context.Background(), img, func(n uint64) {
				blocks = append(blocks, n)
			})
			if err != nil {
				t.Fatalf("TransferImage() error = %v", err)
			}

			if !bytes.Equal(link.Written(), tt.script.Host()) {
				t.Errorf("host frames differ from the expected transcript")
			}
			if fmt.Sprint(blocks) != fmt.Sprint(tt.wantBlocks) {
				t.Errorf("blocks = %v, want %v", blocks, tt.wantBlocks)
			}
			if img.Cursor() != img.Size {
				t.Errorf("Cursor() = %d, want %d", img.Cursor(), img.Size)
			}
			if sess.Counter() != tt.script.Counter() {
				t.Errorf("Counter() = %d, want %d", sess.Counter(), tt.script.Counter())
			}
		})
	}
}

func repeat(v uint64, n int) []uint64 {
	out := make([]uint64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func TestCounterAdvancesTwicePerBlock(t *testing.T) {
	for _, blocks := range []int{0, 1, 2, 63, 127, 128, 200} {
		t.Run(fmt.Sprintf("%d blocks", blocks), func(t *testing.T) {
			script := devicetest.NewScript().Transfer(pattern(blocks), 1)
			sess, _ := newTestSession(t, script.Device())
			img := firmware.FromBytes("img", firmware.RoleBoot, pattern(blocks))

			if err := sess.TransferImage(context.Background(), img, nil); err != nil {
				t.Fatalf("TransferImage() error = %v", err)
			}

			want := byte(1 + 2*blocks)
			if sess.Counter() != want {
				t.Errorf("Counter() = 0x%02X, want 0x%02X", sess.Counter(), want)
			}
		})
	}
}

func TestTransferImageInvalidGrant(t *testing.T) {
	tests := []struct {
		name  string
		grant uint32
	}{
		{name: "zero grant", grant: 0},
		{name: "grant larger than remaining", grant: 11},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			script := devicetest.NewScript().Request(10, tt.grant)
			sess, link := newTestSession(t, script.Device())
			img := firmware.FromBytes("boot.bin", firmware.RoleBoot, pattern(10))

			err := sess.TransferImage(context.Background(), img, nil)

			var ge *GrantError
			if !errors.As(err, &ge) {
				t.Fatalf("TransferImage() error = %v, want *GrantError", err)
			}
			if ge.Grant != tt.grant || ge.Remaining != 10 || ge.Counter != 1 {
				t.Errorf("GrantError = %+v", ge)
			}
			if !errors.Is(err, transport.ErrMismatch) {
				t.Error("GrantError should match transport.ErrMismatch")
			}
			if !bytes.Equal(link.Written(), script.Host()) {
				t.Errorf("host wrote past the RequestBlock: % X", link.Written())
			}
			if img.Cursor() != 0 {
				t.Errorf("Cursor() = %d, want 0", img.Cursor())
			}
		})
	}
}

func TestTransferImageFileError(t *testing.T) {
	// the source holds fewer bytes than its declared size
	img := firmware.NewImage("short.bin", firmware.RoleBoot, strings.NewReader("abc"), 8)
	script := devicetest.NewScript().Request(8, 8)
	sess, link := newTestSession(t, script.Device())

	err := sess.TransferImage(context.Background(), img, nil)
	if !errors.Is(err, firmware.ErrFile) {
		t.Fatalf("TransferImage() error = %v, want ErrFile", err)
	}
	if !bytes.Equal(link.Written(), script.Host()) {
		t.Errorf("host sent a DataBlock after the read failed: % X", link.Written())
	}
}

func TestTransferImageTooLarge(t *testing.T) {
	sess, link := newTestSession(t, nil)
	img := firmware.NewImage("huge.bin", firmware.RoleBoot, strings.NewReader(""), 1<<32)

	err := sess.TransferImage(context.Background(), img, nil)
	if !errors.Is(err, ErrConfiguration) {
		t.Fatalf("TransferImage() error = %v, want ErrConfiguration", err)
	}
	if len(link.Written()) != 0 {
		t.Errorf("host wrote %d bytes", len(link.Written()))
	}
}

func TestEndImage(t *testing.T) {
	script := devicetest.NewScript().EndImage()
	sess, link := newTestSession(t, script.Device())

	if err := sess.EndImage(context.Background()); err != nil {
		t.Fatalf("EndImage() error = %v", err)
	}
	if !bytes.Equal(link.Written(), script.Host()) {
		t.Errorf("host wrote % X, want % X", link.Written(), script.Host())
	}
	if sess.Phase() != PhaseImageDone {
		t.Errorf("Phase() = %v, want %v", sess.Phase(), PhaseImageDone)
	}
}

func TestPhaseString(t *testing.T) {
	tests := []struct {
		phase Phase
		want  string
	}{
		{PhaseDisconnected, "disconnected"},
		{PhaseSynced, "synced"},
		{PhaseVersioned, "versioned"},
		{PhaseImageNegotiated, "image-negotiated"},
		{PhaseTransferring, "transferring"},
		{PhaseImageDone, "image-done"},
		{PhaseComplete, "complete"},
		{Phase(42), "Phase(42)"},
	}

	for _, tt := range tests {
		if got := tt.phase.String(); got != tt.want {
			t.Errorf("Phase(%d).String() = %q, want %q", int(tt.phase), got, tt.want)
		}
	}
}

func TestReadWriteErrors(t *testing.T) {
	t.Run("write error", func(t *testing.T) {
		sess, link := newTestSession(t, nil)
		link.FailWritesAfter(0, errors.New("write failed"))

		err := sess.Sync(context.Background())
		if !errors.Is(err, transport.ErrLink) {
			t.Fatalf("Sync() error = %v, want ErrLink", err)
		}
	})

	t.Run("read error", func(t *testing.T) {
		sess, link := newTestSession(t, []byte("wt"))
		link.FailReadsWith(io.ErrClosedPipe)

		err := sess.Sync(context.Background())
		if !errors.Is(err, transport.ErrLink) {
			t.Fatalf("Sync() error = %v, want ErrLink", err)
		}
		if !errors.Is(err, io.ErrClosedPipe) {
			t.Errorf("Sync() error = %v, want wrapping io.ErrClosedPipe", err)
		}
	})

	t.Run("silent device", func(t *testing.T) {
		sess, _ := newTestSession(t, nil, WithTimeout(30*time.Millisecond))

		err := sess.Sync(context.Background())
		var te *transport.TimeoutError
		if !errors.As(err, &te) {
			t.Fatalf("Sync() error = %v, want *TimeoutError", err)
		}
		if te.Frame != protocol.FrameSync {
			t.Errorf("Frame = %q, want %q", te.Frame, protocol.FrameSync)
		}
	})
}
