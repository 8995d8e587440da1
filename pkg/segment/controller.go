// Package segment contains the rotation policy of output segments.
package segment

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// DefaultTempSuffix is the default suffix of temporary segment paths.
const DefaultTempSuffix = "_"

// Writer is the capability used to write access units into segments.
type Writer interface {
	Open(path string) error
	WriteAccessUnit(frameID uint32, au []byte) error
	Finalize() error
}

// Segment is an output file.
type Segment struct {
	// path of the file once finalized.
	FinalPath string

	// path of the file while it is being written.
	TempPath string

	// wall clock time of the refresh point that opened the segment.
	OpenSince time.Time

	// first and last frame ids written.
	FirstFrameID uint32
	LastFrameID  uint32

	// written access units and bytes.
	Frames int
	Bytes  int64
}

// Controller decides when to finalize the current segment and open the next one.
// Segments are opened at refresh points; access units received while no segment
// is open are dropped.
type Controller struct {
	// directory that contains camera directories.
	BasePath string

	// camera name, used as sub directory.
	Camera string

	// suffix of temporary paths.
	// It defaults to DefaultTempSuffix.
	TempSuffix string

	// destination of access units.
	Writer Writer

	// wall clock.
	// It defaults to time.Now.
	Now func() time.Time

	// called after a segment is opened (optional).
	OnSegmentOpen func(*Segment)

	// called after a segment is finalized and renamed (optional).
	OnSegmentFinalize func(*Segment)

	cur     *Segment
	lastTS  int64
	dropped int
}

// Initialize initializes Controller.
func (c *Controller) Initialize() error {
	if c.Writer == nil {
		return fmt.Errorf("Writer is not set")
	}
	if c.Camera == "" {
		return fmt.Errorf("camera name is empty")
	}
	if c.TempSuffix == "" {
		c.TempSuffix = DefaultTempSuffix
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	if c.OnSegmentOpen == nil {
		c.OnSegmentOpen = func(*Segment) {}
	}
	if c.OnSegmentFinalize == nil {
		c.OnSegmentFinalize = func(*Segment) {}
	}
	return nil
}

// Dir returns the directory that contains the segments of the camera.
func (c *Controller) Dir() string {
	return filepath.Join(c.BasePath, c.Camera)
}

// Current returns the open segment, or nil.
func (c *Controller) Current() *Segment {
	return c.cur
}

// Dropped returns the number of access units received while no segment was open.
func (c *Controller) Dropped() int {
	return c.dropped
}

// RefreshPoint finalizes the open segment, if any, and opens a new one.
// The access unit that precedes the refresh point must have already been written.
func (c *Controller) RefreshPoint() error {
	if c.cur != nil {
		err := c.finalize()
		if err != nil {
			return err
		}
	}

	return c.open()
}

// WriteAccessUnit writes an access unit into the open segment.
func (c *Controller) WriteAccessUnit(frameID uint32, au []byte) error {
	if c.cur == nil {
		c.dropped++
		return nil
	}

	err := c.Writer.WriteAccessUnit(frameID, au)
	if err != nil {
		return err
	}

	if c.cur.Frames == 0 {
		c.cur.FirstFrameID = frameID
	}
	c.cur.LastFrameID = frameID
	c.cur.Frames++
	c.cur.Bytes += int64(len(au))

	return nil
}

// Close finalizes the open segment, if any.
func (c *Controller) Close() error {
	if c.cur == nil {
		return nil
	}
	return c.finalize()
}

func (c *Controller) open() error {
	now := c.Now()

	// names must be unique even if the clock goes backwards
	ts := now.UnixMilli()
	if ts <= c.lastTS {
		ts = c.lastTS + 1
	}
	c.lastTS = ts

	finalPath := filepath.Join(c.Dir(), fmt.Sprintf("%x.ts", ts))
	seg := &Segment{
		FinalPath: finalPath,
		TempPath:  finalPath + c.TempSuffix,
		OpenSince: now,
	}

	err := c.Writer.Open(seg.TempPath)
	if err != nil {
		return err
	}

	c.cur = seg
	c.OnSegmentOpen(seg)

	return nil
}

func (c *Controller) finalize() error {
	seg := c.cur
	c.cur = nil

	err := c.Writer.Finalize()
	if err != nil {
		return err
	}

	err = os.Rename(seg.TempPath, seg.FinalPath)
	if err != nil {
		return err
	}

	c.OnSegmentFinalize(seg)
	return nil
}
