// Package demux contains a demultiplexer of RTSP interleaved frames.
package demux

import (
	"errors"
	"fmt"
	"io"

	"github.com/judocare/hevcrec/pkg/base"
	"github.com/judocare/hevcrec/pkg/liberrors"
)

const (
	// DefaultBufferSize is the default size of the network buffer.
	DefaultBufferSize = 5 * 1024

	// frames are parsed only when at least an interleaved header
	// and a RTP fixed header are buffered.
	minBufferedSize = base.InterleavedFrameHeaderSize + 12
)

// Demuxer splits a RTSP/TCP byte stream into interleaved frames.
//
// It keeps only the unconsumed tail of the last read in a fixed-size buffer.
// Frames passed to the callback point into that buffer, therefore they
// are valid only until the callback returns.
type Demuxer struct {
	// source of the stream.
	Reader io.Reader

	// size of the network buffer.
	// It defaults to DefaultBufferSize.
	BufferSize int

	buf []byte
	n   int
	fr  base.InterleavedFrame
}

// Initialize initializes a Demuxer.
func (d *Demuxer) Initialize() error {
	if d.BufferSize == 0 {
		d.BufferSize = DefaultBufferSize
	}

	if d.BufferSize < minBufferedSize {
		return fmt.Errorf("buffer size (%d) is lower than minimum (%d)", d.BufferSize, minBufferedSize)
	}

	d.buf = make([]byte, d.BufferSize)
	d.n = 0

	return nil
}

// Buffered returns the number of bytes waiting for the rest of their frame.
func (d *Demuxer) Buffered() int {
	return d.n
}

// Read performs a single read from the source, then calls onFrame
// for every complete frame currently buffered, in arrival order.
func (d *Demuxer) Read(onFrame func(*base.InterleavedFrame) error) error {
	if d.n == len(d.buf) {
		return liberrors.ErrDemuxBufferOverflow{Size: d.n + 1, Capacity: len(d.buf)}
	}

	n, err := d.Reader.Read(d.buf[d.n:])
	d.n += n

	if n > 0 {
		err2 := d.consume(onFrame)
		if err2 != nil {
			return err2
		}
	}

	if err != nil {
		if errors.Is(err, io.EOF) {
			return liberrors.ErrClientConnectionClosed{}
		}
		return err
	}

	return nil
}

func (d *Demuxer) consume(onFrame func(*base.InterleavedFrame) error) error {
	pos := 0

	for d.n-pos >= minBufferedSize {
		channel, payloadSize, ok := base.DecodeInterleavedHeader(d.buf[pos:])
		if !ok {
			return liberrors.ErrDemuxInvalidMagicByte{Byte: d.buf[pos]}
		}

		size := base.InterleavedFrameHeaderSize + payloadSize

		if size > len(d.buf) {
			return liberrors.ErrDemuxBufferOverflow{Size: size, Capacity: len(d.buf)}
		}

		if d.n-pos < size {
			break
		}

		d.fr.Channel = channel
		d.fr.Payload = d.buf[pos+base.InterleavedFrameHeaderSize : pos+size]
		pos += size

		err := onFrame(&d.fr)
		if err != nil {
			return err
		}
	}

	// move the unconsumed tail to the front of the buffer
	if pos > 0 {
		d.n = copy(d.buf, d.buf[pos:d.n])
	}

	return nil
}
