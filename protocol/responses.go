package protocol

import (
	"encoding/binary"
	"fmt"
)

// SyncAck returns the bytes the device answers BuildSyncCmd with.
func SyncAck() []byte {
	return []byte(SyncResponse)
}

// PreambleAck returns the echoed preamble.
func PreambleAck() []byte {
	return BuildPreambleCmd()
}

// SessionStartAck returns the acknowledgment to BuildSessionStartCmd.
//
// Response structure:
//
//	['+'][00][00][01][00][00]
func SessionStartAck() []byte {
	ack := make([]byte, AckSize)
	ack[0] = CmdSessionStart
	ack[3] = SessionAcceptedFlag
	return ack
}

// GetVersionAck returns the acknowledgment header that precedes the
// GetVersion payload.
//
// Response structure:
//
//	[20][00][00][00][08][14]
func GetVersionAck() []byte {
	return buildAck(CmdGetVersion, 0, VersionPayloadSize)
}

// VersionTrailer returns the zero bytes that close the GetVersion response.
func VersionTrailer() []byte {
	return make([]byte, VersionTrailerSize)
}

// GetImageTypeAck returns the acknowledgment header that precedes the
// image type field.
//
// Response structure:
//
//	['&'][00][00][00][08][04]
func GetImageTypeAck() []byte {
	return buildAck(CmdGetImageType, 0, FieldPayloadSize)
}

// SetImageTypeAck returns the acknowledgment to BuildSetImageTypeCmd.
//
// Response structure:
//
//	[0x27][00][00][00][08][00]
func SetImageTypeAck() []byte {
	return buildAck(CmdSetImageType, 0, 0)
}

// RequestBlockAck returns the acknowledgment header that precedes a grant.
//
// Response structure:
//
//	['*'][CTR][00][00][08][04]
func RequestBlockAck(counter byte) []byte {
	return buildAck(CmdRequestBlock, counter, FieldPayloadSize)
}

// DataBlockAck returns the acknowledgment to a DataBlock frame.
//
// Response structure:
//
//	['"'][CTR][00][00][08][00]
func DataBlockAck(counter byte) []byte {
	return buildAck(CmdDataBlock, counter, 0)
}

// EndOfImageAck returns the acknowledgment to BuildEndOfImageCmd.
//
// Response structure:
//
//	[00][00][00][00][08][00]
func EndOfImageAck() []byte {
	return buildAck(CmdEndOfImage, 0, 0)
}

func buildAck(cmd, counter, payload byte) []byte {
	ack := make([]byte, AckSize)
	ack[0] = cmd
	ack[1] = counter
	ack[4] = AckFlag
	ack[5] = payload
	return ack
}

// ParseVersionResponse decodes the GetVersion payload that follows
// GetVersionAck.
//
// Data format (12 bytes):
//
//	[VERSION(4, reversed)][BUILD_DATE(4, LE)][PROCESSOR(4, reversed)]
func ParseVersionResponse(data []byte) (*DeviceInfo, error) {
	if len(data) != 3*FieldSize {
		return nil, fmt.Errorf("invalid data length for GetVersion response: got %d bytes, expected %d", len(data), 3*FieldSize)
	}

	info := &DeviceInfo{
		BuildDate: binary.LittleEndian.Uint32(data[4:8]),
	}
	info.Version = reverse4(data[0:4])
	processor := reverse4(data[8:12])
	info.ProcessorID = string(processor[:])

	return info, nil
}

// ParseImageTypeResponse decodes the image type field that follows
// GetImageTypeAck.
//
// Data format (4 bytes):
//
//	[IMAGE_TYPE(4, reversed)]
func ParseImageTypeResponse(data []byte) (ImageType, error) {
	if len(data) != FieldSize {
		return ImageType{}, fmt.Errorf("invalid data length for GetImageType response: got %d bytes, expected %d", len(data), FieldSize)
	}

	return ImageType(reverse4(data)), nil
}

// ParseGrantResponse decodes the grant size that follows RequestBlockAck.
//
// Data format (4 bytes):
//
//	[GRANT(4, LE)]
func ParseGrantResponse(data []byte) (uint32, error) {
	if len(data) != LengthFieldSize {
		return 0, fmt.Errorf("invalid data length for RequestBlock response: got %d bytes, expected %d", len(data), LengthFieldSize)
	}

	return binary.LittleEndian.Uint32(data), nil
}

// reverse4 turns a field received high-byte-first into host order.
func reverse4(b []byte) [4]byte {
	return [4]byte{b[3], b[2], b[1], b[0]}
}
