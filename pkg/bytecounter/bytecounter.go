// Package bytecounter contains a io.ReadWriter wrapper that allows to count read and written bytes.
package bytecounter

import (
	"errors"
	"io"
	"sync/atomic"
	"syscall"
)

// ByteCounter is a io.ReadWriter wrapper that allows to count read and written bytes.
// Writes interrupted by a signal are retried.
type ByteCounter struct {
	rw       io.ReadWriter
	received atomic.Uint64
	sent     atomic.Uint64
}

// New allocates a ByteCounter.
func New(rw io.ReadWriter) *ByteCounter {
	return &ByteCounter{
		rw: rw,
	}
}

// Read implements io.ReadWriter.
func (bc *ByteCounter) Read(p []byte) (int, error) {
	n, err := bc.rw.Read(p)
	bc.received.Add(uint64(n))
	return n, err
}

// Write implements io.ReadWriter.
func (bc *ByteCounter) Write(p []byte) (int, error) {
	written := 0

	for written < len(p) {
		n, err := bc.rw.Write(p[written:])
		written += n
		bc.sent.Add(uint64(n))

		if err != nil {
			if errors.Is(err, syscall.EINTR) {
				continue
			}
			return written, err
		}
	}

	return written, nil
}

// BytesReceived returns the number of bytes received.
func (bc *ByteCounter) BytesReceived() uint64 {
	return bc.received.Load()
}

// BytesSent returns the number of bytes sent.
func (bc *ByteCounter) BytesSent() uint64 {
	return bc.sent.Load()
}
