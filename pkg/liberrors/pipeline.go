package liberrors

import (
	"fmt"
)

// ErrDemuxInvalidMagicByte is returned when an interleaved frame does not start with '$'.
type ErrDemuxInvalidMagicByte struct {
	Byte byte
}

// Error implements the error interface.
func (e ErrDemuxInvalidMagicByte) Error() string {
	return fmt.Sprintf("invalid interleaved frame magic byte (0x%.2x)", e.Byte)
}

// ErrDemuxBufferOverflow is returned when an interleaved frame does not fit into the network buffer.
type ErrDemuxBufferOverflow struct {
	Size     int
	Capacity int
}

// Error implements the error interface.
func (e ErrDemuxBufferOverflow) Error() string {
	return fmt.Sprintf("interleaved frame size (%d) exceeds network buffer capacity (%d)",
		e.Size, e.Capacity)
}

// ErrRTPPacketInvalid is returned when a RTP packet cannot be decoded.
type ErrRTPPacketInvalid struct {
	Err error
}

// Error implements the error interface.
func (e ErrRTPPacketInvalid) Error() string {
	return fmt.Sprintf("invalid RTP packet: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e ErrRTPPacketInvalid) Unwrap() error {
	return e.Err
}

// ErrUnsupportedPayload is returned when a RTP payload carries a HEVC
// payload type that is neither a single NAL unit nor a fragmentation unit.
type ErrUnsupportedPayload struct {
	Type uint8
}

// Error implements the error interface.
func (e ErrUnsupportedPayload) Error() string {
	return fmt.Sprintf("unsupported HEVC payload type (%d)", e.Type)
}

// ErrPayloadTooShort is returned when a RTP payload is too short to contain the HEVC headers.
type ErrPayloadTooShort struct {
	Size int
	Min  int
}

// Error implements the error interface.
func (e ErrPayloadTooShort) Error() string {
	return fmt.Sprintf("HEVC payload size (%d) is lower than minimum (%d)", e.Size, e.Min)
}

// ErrFragmentMismatch is returned when a continuation or end fragment
// does not belong to the access unit that is being built.
type ErrFragmentMismatch struct {
	Expected    uint32
	HasExpected bool
	Value       uint32
}

// Error implements the error interface.
func (e ErrFragmentMismatch) Error() string {
	if !e.HasExpected {
		return fmt.Sprintf("fragment of frame %d received without a starting fragment", e.Value)
	}
	return fmt.Sprintf("fragment of frame %d received while building frame %d", e.Value, e.Expected)
}

// ErrAccessUnitOverflow is returned when an access unit exceeds the access unit buffer.
type ErrAccessUnitOverflow struct {
	Size     int
	Capacity int
}

// Error implements the error interface.
func (e ErrAccessUnitOverflow) Error() string {
	return fmt.Sprintf("access unit size (%d) exceeds buffer capacity (%d)", e.Size, e.Capacity)
}

// ErrContainer is returned when the container writer fails.
type ErrContainer struct {
	Op  string
	Err error
}

// Error implements the error interface.
func (e ErrContainer) Error() string {
	return fmt.Sprintf("container %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e ErrContainer) Unwrap() error {
	return e.Err
}
