package devicetest

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/moffa90/go-wtptp/protocol"
)

// replay feeds host bytes to the simulator and captures its answers.
type replay struct {
	io.Reader
	out bytes.Buffer
}

func (r *replay) Write(p []byte) (int, error) {
	return r.out.Write(p)
}

func TestSimulatorAnswersScript(t *testing.T) {
	boot := bytes.Repeat([]byte{0x11}, 5000)
	app := []byte("application")

	script := NewScript().
		Handshake().
		Version(DefaultVersion).
		ImageType(TypeTIMH).
		Transfer(boot, DefaultMaxGrant).
		EndImage().
		OpenSession().
		ImageType(TypeOBMI).
		Transfer(app, DefaultMaxGrant).
		EndImage()

	sim := NewSimulator()
	rw := &replay{Reader: bytes.NewReader(script.Host())}
	if err := sim.Serve(rw); err != nil {
		t.Fatalf("Serve() error = %v", err)
	}

	if !bytes.Equal(rw.out.Bytes(), script.Device()) {
		t.Errorf("simulator answered\n% X\nwant\n% X", rw.out.Bytes(), script.Device())
	}

	images := sim.Images()
	if len(images) != 2 || !bytes.Equal(images[0], boot) || !bytes.Equal(images[1], app) {
		t.Errorf("simulator kept %d images with unexpected contents", len(images))
	}
	if sim.Counter() != script.Counter() {
		t.Errorf("Counter() = %d, want %d", sim.Counter(), script.Counter())
	}
}

func TestSimulatorRejectsBadCounter(t *testing.T) {
	host := NewScript().
		Handshake().
		Version(DefaultVersion).
		ImageType(TypeTIMH).
		Host()
	host = append(host, protocol.BuildRequestBlockCmd(7, 4)...)

	err := NewSimulator().Serve(&replay{Reader: bytes.NewReader(host)})
	if err == nil || !strings.Contains(err.Error(), "counter 0x07, expected 0x01") {
		t.Errorf("Serve() error = %v, want counter complaint", err)
	}
}

func TestSimulatorRejectsBadSync(t *testing.T) {
	err := NewSimulator().Serve(&replay{Reader: strings.NewReader("WTP\r")})
	if err == nil || !strings.Contains(err.Error(), "sync") {
		t.Errorf("Serve() error = %v, want sync complaint", err)
	}
}

func TestScriptCounter(t *testing.T) {
	s := NewScript().Transfer(make([]byte, 300), 1)
	// 300 blocks advance the counter 600 times
	if got, want := s.Counter(), byte((1+600)%256); got != want {
		t.Errorf("Counter() = %d, want %d", got, want)
	}
}

func TestEncodeVersion(t *testing.T) {
	got := EncodeVersion(DefaultVersion)

	want := append(protocol.GetVersionAck(),
		0x00, 0x01, 0x02, 0x03, // version reversed
		0x15, 0x03, 0x24, 0x20, // build date LE
		'3', 'P', 'M', 'M', // processor reversed
	)
	want = append(want, protocol.VersionTrailer()...)
	if !bytes.Equal(got, want) {
		t.Errorf("EncodeVersion() = % X, want % X", got, want)
	}

	info, err := protocol.ParseVersionResponse(got[protocol.AckSize : protocol.AckSize+12])
	if err != nil {
		t.Fatalf("ParseVersionResponse() error = %v", err)
	}
	if *info != DefaultVersion {
		t.Errorf("round trip = %+v, want %+v", *info, DefaultVersion)
	}
}

func TestFakeLink(t *testing.T) {
	link := NewFakeLink([]byte{1, 2, 3})
	defer link.Close()

	buf := make([]byte, 2)
	if n, _ := link.Read(buf); n != 2 {
		t.Errorf("Read() = %d, want 2", n)
	}
	if n, _ := link.Read(buf); n != 1 {
		t.Errorf("Read() = %d, want 1", n)
	}

	link.FailWritesAfter(1, io.ErrClosedPipe)
	if _, err := link.Write([]byte("ok")); err != nil {
		t.Fatalf("first Write() error = %v", err)
	}
	if _, err := link.Write([]byte("no")); err != io.ErrClosedPipe {
		t.Errorf("second Write() error = %v, want %v", err, io.ErrClosedPipe)
	}
	if string(link.Written()) != "ok" || link.Writes() != 1 {
		t.Errorf("Written() = %q after %d writes", link.Written(), link.Writes())
	}

	link.Close()
	if _, err := link.Read(buf); err != io.EOF {
		t.Errorf("Read() after Close = %v, want io.EOF", err)
	}
}
