package downloader

import "fmt"

// Phase is the session's position in the protocol.
type Phase int

const (
	// PhaseDisconnected is the state before the sync exchange
	PhaseDisconnected Phase = iota

	// PhaseSynced follows sync, preamble and session-ack
	PhaseSynced

	// PhaseVersioned follows GetVersion
	PhaseVersioned

	// PhaseImageNegotiated follows GetImageType and SetImageType
	PhaseImageNegotiated

	// PhaseTransferring covers the RequestBlock/DataBlock loop
	PhaseTransferring

	// PhaseImageDone follows EndOfImage and its preamble
	PhaseImageDone

	// PhaseComplete is reported once every image is done
	PhaseComplete
)

func (p Phase) String() string {
	switch p {
	case PhaseDisconnected:
		return "disconnected"
	case PhaseSynced:
		return "synced"
	case PhaseVersioned:
		return "versioned"
	case PhaseImageNegotiated:
		return "image-negotiated"
	case PhaseTransferring:
		return "transferring"
	case PhaseImageDone:
		return "image-done"
	case PhaseComplete:
		return "complete"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}
