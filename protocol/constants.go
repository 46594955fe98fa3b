package protocol

// SyncRequest is the literal the host sends to wake the boot ROM.
const SyncRequest = "wtp\r"

// SyncResponse is the literal the boot ROM answers a SyncRequest with.
const SyncResponse = "wtp\r\n"

// Preamble is the 4-byte synchronization frame. The device echoes it verbatim.
var Preamble = [4]byte{0x00, 0xD3, 0x02, '+'}

// Command codes. Each is the first byte of a host frame and of the device's
// acknowledgment to it.
const (
	// CmdEndOfImage terminates the transfer of the current image
	CmdEndOfImage = 0x00

	// CmdGetVersion queries the boot ROM version, build date and processor
	CmdGetVersion = 0x20

	// CmdDataBlock carries one granted chunk of image payload
	CmdDataBlock = 0x22

	// CmdGetImageType asks which image the device expects next
	CmdGetImageType = 0x26

	// CmdSetImageType begins the transfer of the expected image
	CmdSetImageType = 0x27

	// CmdRequestBlock announces the remaining length and asks for a grant
	CmdRequestBlock = 0x2A

	// CmdSessionStart opens a command session after the preamble
	CmdSessionStart = 0x2B
)

// Frame sizes.
const (
	// CommandFrameSize is the size of a fixed host command frame
	CommandFrameSize = 8

	// SetImageTypeFrameSize is the size of the SetImageType frame (one extra data byte)
	SetImageTypeFrameSize = 9

	// AckSize is the size of the fixed acknowledgment header sent by the device
	AckSize = 6

	// DataBlockHeaderSize is the size of the DataBlock header before the length field
	DataBlockHeaderSize = 4

	// LengthFieldSize is the size of the little-endian length fields (remaining, grant)
	LengthFieldSize = 4

	// FieldSize is the size of every fixed-width field read from the device
	FieldSize = 4

	// VersionTrailerSize is the number of zero bytes closing the GetVersion response
	VersionTrailerSize = 8
)

// Acknowledgment flags found at byte 4 of device acknowledgments.
const (
	// AckFlag marks a successful acknowledgment
	AckFlag = 0x08

	// SessionAcceptedFlag is byte 3 of the session-start acknowledgment
	SessionAcceptedFlag = 0x01

	// VersionPayloadSize is the payload length advertised by the GetVersion acknowledgment (20 bytes)
	VersionPayloadSize = 0x14

	// FieldPayloadSize is the payload length advertised by acknowledgments carrying one 4-byte field
	FieldPayloadSize = 0x04

	// RequestBlockLength is byte 4 of a RequestBlock frame: the size of the remaining-length field
	RequestBlockLength = 0x04

	// SetImageTypeValue is byte 4 of the SetImageType frame
	SetImageTypeValue = 0x01
)

// MaxImageSize is the largest image the protocol can describe. Remaining
// lengths and grants travel as unsigned 32-bit fields.
const MaxImageSize = 0xFFFFFFFF

// DefaultBaudRate is the serial speed the boot ROM listens at.
const DefaultBaudRate = 115200

// InitialCounter is the sequence counter value at the start of a session.
const InitialCounter = 1
