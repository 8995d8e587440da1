package base

import (
	"bufio"
	"fmt"
	"io"
)

const (
	// InterleavedFrameMagicByte is the first byte of an interleaved frame.
	InterleavedFrameMagicByte = 0x24

	// InterleavedFrameHeaderSize is the size of the header of an interleaved frame.
	InterleavedFrameHeaderSize = 4

	interleavedFrameMaxPayloadSize = 0xFFFF
)

// InterleavedFrame is a binary packet sent through the RTSP connection.
// It is made of the magic byte, a channel, the payload size and the payload.
type InterleavedFrame struct {
	// channel ID
	Channel int

	// payload
	Payload []byte
}

// DecodeInterleavedHeader decodes the header of an interleaved frame.
// It returns false if the magic byte is not present.
func DecodeInterleavedHeader(header []byte) (channel int, payloadSize int, ok bool) {
	if header[0] != InterleavedFrameMagicByte {
		return 0, 0, false
	}
	return int(header[1]), int(header[2])<<8 | int(header[3]), true
}

// Unmarshal reads an interleaved frame.
// The payload is allocated.
func (f *InterleavedFrame) Unmarshal(br *bufio.Reader) error {
	var header [InterleavedFrameHeaderSize]byte
	_, err := io.ReadFull(br, header[:])
	if err != nil {
		return err
	}

	channel, size, ok := DecodeInterleavedHeader(header[:])
	if !ok {
		return fmt.Errorf("invalid magic byte (0x%.2x)", header[0])
	}

	f.Channel = channel
	f.Payload = make([]byte, size)

	_, err = io.ReadFull(br, f.Payload)
	return err
}

// AppendTo appends the encoded frame to buf.
func (f InterleavedFrame) AppendTo(buf []byte) ([]byte, error) {
	size := len(f.Payload)
	if size > interleavedFrameMaxPayloadSize {
		return nil, fmt.Errorf("payload size (%d) exceeds maximum (%d)", size, interleavedFrameMaxPayloadSize)
	}

	buf = append(buf, InterleavedFrameMagicByte, byte(f.Channel), byte(size>>8), byte(size))
	return append(buf, f.Payload...), nil
}

// Marshal encodes an interleaved frame.
func (f InterleavedFrame) Marshal() ([]byte, error) {
	return f.AppendTo(make([]byte, 0, InterleavedFrameHeaderSize+len(f.Payload)))
}
