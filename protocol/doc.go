// Package protocol implements the wire vocabulary of the WTP download protocol
// spoken by Marvell/PXA boot ROMs over a serial line.
//
// This package provides functions to build host frames and the exact
// acknowledgments the device is expected to answer with. It performs no I/O.
//
// # Protocol Overview
//
// The protocol is strictly request/response over a half-duplex byte link.
// Fixed host frames are 8 bytes, device acknowledgments are 6 bytes:
//
//	Command:        [CMD][CTR][00][00][LEN][00][00][00]
//	Acknowledgment: [CMD][CTR][00][00][08][PAYLOAD_LEN]
//
// Where:
//   - CMD = command code, echoed in the acknowledgment
//   - CTR = 8-bit wrapping sequence counter (RequestBlock and DataBlock only)
//   - 08  = acknowledgment flag
//
// Multi-byte integers are little-endian. Identification fields (version,
// processor, image type) are received high-byte-first and reversed.
//
// # Exchange Table
//
//	Phase         Host -> Device                  Device -> Host
//	sync          "wtp\r"                         "wtp\r\n"
//	preamble      00 D3 02 2B                     00 D3 02 2B
//	session-ack   2B 00x7                         2B 00 00 01 00 00
//	GetVersion    20 00 00 08 00 00 00 00         20 00 00 00 08 14 + 12 bytes + 00x8
//	GetImageType  26 00x7                         26 00 00 00 08 04 + type(4)
//	SetImageType  27 00 00 00 01 00 00 00 00      27 00 00 00 08 00
//	RequestBlock  2A ctr 00 00 04 00 00 00 + rem  2A ctr 00 00 08 04 + grant(4)
//	DataBlock     22 ctr 00 00 + len(4) + data    22 ctr 00 00 08 00
//	EndOfImage    00x8                            00 00 00 00 08 00
//
// # Command Builders
//
// Use the Build* functions to create host frames:
//
//	frame := protocol.BuildRequestBlockCmd(counter, remaining)
//	frame, err := protocol.BuildDataBlockCmd(counter, chunk)
//
// # Acknowledgments and Parsers
//
// The *Ack functions return the bytes to expect verbatim; the Parse*
// functions decode the variable fields that follow some acknowledgments:
//
//	info, err := protocol.ParseVersionResponse(payload)
//	imageType, err := protocol.ParseImageTypeResponse(field)
//	grant, err := protocol.ParseGrantResponse(field)
package protocol
