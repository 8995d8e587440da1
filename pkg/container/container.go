// Package container contains writers of access units into media files.
package container

import (
	"github.com/judocare/hevcrec/pkg/liberrors"
)

const (
	// ClockRate is the clock rate of timestamps passed to Writer.
	ClockRate = 90000

	// FrameRate is the frame rate of frame ids passed to Adapter.
	FrameRate = 25
)

// Writer writes access units into a media file.
type Writer interface {
	// Open creates the file and writes its header.
	Open(path string) error

	// WriteSample writes an Annex-B access unit.
	// Timestamps are expressed in ClockRate units.
	WriteSample(pts int64, dts int64, au []byte) error

	// Finalize writes the trailer and closes the file.
	Finalize() error
}

// Timestamp converts a frame id into a timestamp in ClockRate units.
func Timestamp(frameID uint32) int64 {
	return int64(frameID) * (ClockRate / FrameRate)
}

// Adapter writes access units identified by frame ids into a Writer.
// Presentation and decode timestamps are both derived from the frame id.
type Adapter struct {
	Writer Writer
}

// Open opens a file.
func (a *Adapter) Open(path string) error {
	err := a.Writer.Open(path)
	if err != nil {
		return liberrors.ErrContainer{Op: "open", Err: err}
	}
	return nil
}

// WriteAccessUnit writes an access unit.
func (a *Adapter) WriteAccessUnit(frameID uint32, au []byte) error {
	ts := Timestamp(frameID)

	err := a.Writer.WriteSample(ts, ts, au)
	if err != nil {
		return liberrors.ErrContainer{Op: "write", Err: err}
	}
	return nil
}

// Finalize finalizes the file.
func (a *Adapter) Finalize() error {
	err := a.Writer.Finalize()
	if err != nil {
		return liberrors.ErrContainer{Op: "finalize", Err: err}
	}
	return nil
}
