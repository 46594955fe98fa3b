package devicetest

import (
	"encoding/binary"

	"github.com/moffa90/go-wtptp/protocol"
)

// Script builds the two byte streams of a session: what a correct host
// writes and what the device answers. Steps append to both streams in
// protocol order, and the transfer counter advances exactly as the host's
// does.
//
// Example:
//
//	s := devicetest.NewScript().
//	    Handshake().
//	    Version(devicetest.DefaultVersion).
//	    ImageType(devicetest.TypeTIMH).
//	    Transfer(image, 4096).
//	    EndImage()
//	link := devicetest.NewFakeLink(s.Device())
type Script struct {
	host    []byte
	device  []byte
	counter byte
}

// NewScript starts a script with the counter at its initial value.
func NewScript() *Script {
	return &Script{counter: protocol.InitialCounter}
}

// Host returns the bytes a correct host writes.
func (s *Script) Host() []byte {
	return append([]byte(nil), s.host...)
}

// Device returns the bytes the device answers with.
func (s *Script) Device() []byte {
	return append([]byte(nil), s.device...)
}

// Counter returns the counter value the host uses for its next frame.
func (s *Script) Counter() byte {
	return s.counter
}

// Exchange appends one raw request and its reply.
func (s *Script) Exchange(host, device []byte) *Script {
	s.host = append(s.host, host...)
	s.device = append(s.device, device...)
	return s
}

// Handshake covers sync, preamble and the session-ack exchange.
func (s *Script) Handshake() *Script {
	s.Exchange(protocol.BuildSyncCmd(), protocol.SyncAck())
	s.Exchange(protocol.BuildPreambleCmd(), protocol.PreambleAck())
	return s.OpenSession()
}

// OpenSession covers the session-ack exchange repeated before each image
// after the first.
func (s *Script) OpenSession() *Script {
	return s.Exchange(protocol.BuildSessionStartCmd(), protocol.SessionStartAck())
}

// Version covers GetVersion with the device reporting info.
func (s *Script) Version(info protocol.DeviceInfo) *Script {
	return s.Exchange(protocol.BuildGetVersionCmd(), EncodeVersion(info))
}

// ImageType covers GetImageType and SetImageType.
func (s *Script) ImageType(t protocol.ImageType) *Script {
	s.Exchange(protocol.BuildGetImageTypeCmd(), EncodeImageType(t))
	return s.Exchange(protocol.BuildSetImageTypeCmd(), protocol.SetImageTypeAck())
}

// Request covers one RequestBlock with the device granting grant bytes.
func (s *Script) Request(remaining, grant uint32) *Script {
	ctr := s.counter
	s.counter++
	return s.Exchange(protocol.BuildRequestBlockCmd(ctr, remaining), EncodeGrant(ctr, grant))
}

// Data covers one DataBlock carrying payload.
func (s *Script) Data(payload []byte) *Script {
	ctr := s.counter
	s.counter++
	frame, err := protocol.BuildDataBlockCmd(ctr, payload)
	if err != nil {
		panic(err)
	}
	return s.Exchange(frame, protocol.DataBlockAck(ctr))
}

// Transfer covers the whole chunk loop for image, with the device granting
// at most maxGrant bytes per round.
func (s *Script) Transfer(image []byte, maxGrant uint32) *Script {
	for len(image) > 0 {
		remaining := uint32(len(image))
		grant := min(remaining, maxGrant)
		s.Request(remaining, grant)
		s.Data(image[:grant])
		image = image[grant:]
	}
	return s
}

// EndImage covers EndOfImage and the preamble that follows it.
func (s *Script) EndImage() *Script {
	s.Exchange(protocol.BuildEndOfImageCmd(), protocol.EndOfImageAck())
	return s.Exchange(protocol.BuildPreambleCmd(), protocol.PreambleAck())
}

// EncodeVersion returns the GetVersion acknowledgment, payload and trailer
// as the device sends them.
func EncodeVersion(info protocol.DeviceInfo) []byte {
	out := protocol.GetVersionAck()
	out = append(out, info.Version[3], info.Version[2], info.Version[1], info.Version[0])
	out = binary.LittleEndian.AppendUint32(out, info.BuildDate)

	var proc [4]byte
	copy(proc[:], info.ProcessorID)
	out = append(out, proc[3], proc[2], proc[1], proc[0])
	return append(out, protocol.VersionTrailer()...)
}

// EncodeImageType returns the GetImageType acknowledgment followed by t on
// the wire.
func EncodeImageType(t protocol.ImageType) []byte {
	return append(protocol.GetImageTypeAck(), t[3], t[2], t[1], t[0])
}

// EncodeGrant returns the RequestBlock acknowledgment followed by grant.
func EncodeGrant(counter byte, grant uint32) []byte {
	return binary.LittleEndian.AppendUint32(protocol.RequestBlockAck(counter), grant)
}
