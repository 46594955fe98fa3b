package protocol

import (
	"encoding/binary"
	"fmt"
)

// BuildSyncCmd returns the wake-up literal sent before anything else.
//
// Frame structure:
//
//	"wtp\r"
func BuildSyncCmd() []byte {
	return []byte(SyncRequest)
}

// BuildPreambleCmd returns the 4-byte synchronization frame.
//
// Frame structure:
//
//	[00][D3][02]['+']
func BuildPreambleCmd() []byte {
	frame := make([]byte, len(Preamble))
	copy(frame, Preamble[:])
	return frame
}

// BuildSessionStartCmd constructs the frame that opens a command session.
// It follows every preamble exchange except the last one of a download.
//
// Frame structure:
//
//	['+'][00][00][00][00][00][00][00]
func BuildSessionStartCmd() []byte {
	return buildCommand(CmdSessionStart, 0, 0)
}

// BuildGetVersionCmd constructs a GetVersion command frame.
//
// Frame structure:
//
//	[20][00][00][08][00][00][00][00]
func BuildGetVersionCmd() []byte {
	frame := buildCommand(CmdGetVersion, 0, 0)
	frame[3] = AckFlag
	return frame
}

// BuildGetImageTypeCmd constructs a GetImageType command frame.
//
// Frame structure:
//
//	['&'][00][00][00][00][00][00][00]
func BuildGetImageTypeCmd() []byte {
	return buildCommand(CmdGetImageType, 0, 0)
}

// BuildSetImageTypeCmd constructs the SetImageType frame that starts the
// transfer of the image announced by GetImageType.
//
// Frame structure:
//
//	[0x27][00][00][00][01][00][00][00][00]
func BuildSetImageTypeCmd() []byte {
	frame := make([]byte, SetImageTypeFrameSize)
	frame[0] = CmdSetImageType
	frame[4] = SetImageTypeValue
	return frame
}

// BuildRequestBlockCmd constructs a RequestBlock frame announcing how many
// bytes of the current image are still to be sent. The device answers with
// the grant size for the next DataBlock.
//
// Frame structure:
//
//	['*'][CTR][00][00][04][00][00][00][REMAINING(4, LE)]
func BuildRequestBlockCmd(counter byte, remaining uint32) []byte {
	frame := buildCommand(CmdRequestBlock, counter, RequestBlockLength)
	frame = binary.LittleEndian.AppendUint32(frame, remaining)
	return frame
}

// BuildDataBlockCmd constructs a DataBlock frame carrying one granted chunk.
// The declared length always equals len(payload).
//
// Frame structure:
//
//	['"'][CTR][00][00][LEN(4, LE)][PAYLOAD...]
func BuildDataBlockCmd(counter byte, payload []byte) ([]byte, error) {
	if len(payload) == 0 {
		return nil, fmt.Errorf("payload cannot be empty")
	}
	if uint64(len(payload)) > MaxImageSize {
		return nil, fmt.Errorf("payload length %d exceeds maximum %d bytes", len(payload), uint64(MaxImageSize))
	}

	frame := make([]byte, 0, DataBlockHeaderSize+LengthFieldSize+len(payload))
	frame = append(frame, CmdDataBlock, counter, 0, 0)
	frame = binary.LittleEndian.AppendUint32(frame, uint32(len(payload)))
	frame = append(frame, payload...)

	return frame, nil
}

// BuildEndOfImageCmd constructs the frame that closes the current image.
//
// Frame structure:
//
//	[00][00][00][00][00][00][00][00]
func BuildEndOfImageCmd() []byte {
	return buildCommand(CmdEndOfImage, 0, 0)
}

// buildCommand lays out a fixed 8-byte command frame.
func buildCommand(cmd, counter, length byte) []byte {
	frame := make([]byte, CommandFrameSize)
	frame[0] = cmd
	frame[1] = counter
	frame[4] = length
	return frame
}
