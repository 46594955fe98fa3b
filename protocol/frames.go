package protocol

// Frame labels name each exchange in diagnostics and logs.
const (
	FrameSync             = "sync"
	FramePreamble         = "preamble"
	FrameSessionStart     = "session-ack"
	FrameGetVersion       = "GetVersion"
	FrameVersionPayload   = "GetVersion payload"
	FrameVersionTrailer   = "GetVersion trailer"
	FrameGetImageType     = "GetImageType"
	FrameImageTypePayload = "GetImageType payload"
	FrameSetImageType     = "SetImageType"
	FrameRequestBlock     = "RequestBlock"
	FrameGrant            = "RequestBlock grant"
	FrameDataBlock        = "DataBlock"
	FrameEndOfImage       = "EndOfImage"
)
