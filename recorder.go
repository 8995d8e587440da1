package hevcrec

import (
	"fmt"
	"io"
	"time"

	"github.com/judocare/hevcrec/pkg/base"
	"github.com/judocare/hevcrec/pkg/container"
	"github.com/judocare/hevcrec/pkg/demux"
	"github.com/judocare/hevcrec/pkg/rtph265"
	"github.com/judocare/hevcrec/pkg/rtpreader"
	"github.com/judocare/hevcrec/pkg/segment"
)

// Recorder reads interleaved frames from a camera stream and writes
// the H265 access units they carry into segments.
//
// All stages run in the goroutine that calls Run, in arrival order.
type Recorder struct {
	//
	// parameters
	//
	// source of interleaved frames, usually a Client.
	Source io.Reader
	// directory that contains camera directories.
	BasePath string
	// camera name.
	Camera string
	// writer of segments.
	Writer container.Writer

	//
	// parameters (all optional)
	//
	// size of the network buffer.
	// It defaults to demux.DefaultBufferSize.
	NetworkBufferSize int
	// size of the access unit buffer.
	// It defaults to rtph265.DefaultBufferSize.
	AccessUnitBufferSize int
	// suffix of temporary segment paths.
	// It defaults to segment.DefaultTempSuffix.
	TempSuffix string
	// wall clock used to name segments.
	// It defaults to time.Now.
	Now func() time.Time

	//
	// callbacks (all optional)
	//
	// called when a segment is opened.
	OnSegmentOpen func(*segment.Segment)
	// called when a segment is finalized.
	OnSegmentFinalize func(*segment.Segment)
	// called when frames are missing.
	OnDiscontinuity func(prev uint32, cur uint32)
	// called periodically with the received video bytes per second.
	OnStats func(bytesPerSecond int)
	// called when video RTP packets are missing.
	OnPacketsLost func(count uint64)

	demuxer     *demux.Demuxer
	reader      *rtpreader.Reader
	reassembler *rtph265.Reassembler
	controller  *segment.Controller
	closed      bool
}

// Initialize initializes Recorder.
func (r *Recorder) Initialize() error {
	if r.Source == nil {
		return fmt.Errorf("Source is not set")
	}
	if r.Writer == nil {
		return fmt.Errorf("Writer is not set")
	}

	r.controller = &segment.Controller{
		BasePath:          r.BasePath,
		Camera:            r.Camera,
		TempSuffix:        r.TempSuffix,
		Writer:            &container.Adapter{Writer: r.Writer},
		Now:               r.Now,
		OnSegmentOpen:     r.OnSegmentOpen,
		OnSegmentFinalize: r.OnSegmentFinalize,
	}
	err := r.controller.Initialize()
	if err != nil {
		return err
	}

	r.reassembler = &rtph265.Reassembler{
		BufferSize:      r.AccessUnitBufferSize,
		OnAccessUnit:    r.controller.WriteAccessUnit,
		OnRefreshPoint:  r.controller.RefreshPoint,
		OnDiscontinuity: r.OnDiscontinuity,
		OnStats:         r.OnStats,
	}
	err = r.reassembler.Initialize()
	if err != nil {
		return err
	}

	r.reader = &rtpreader.Reader{
		Channel:       rtpreader.VideoChannel,
		OnPacketsLost: r.OnPacketsLost,
	}

	r.demuxer = &demux.Demuxer{
		Reader:     r.Source,
		BufferSize: r.NetworkBufferSize,
	}
	return r.demuxer.Initialize()
}

// Run reads the source until an error occurs.
// Errors are always fatal: the Recorder cannot be run again, only closed.
func (r *Recorder) Run() error {
	for {
		err := r.demuxer.Read(r.processFrame)
		if err != nil {
			return err
		}
	}
}

func (r *Recorder) processFrame(fr *base.InterleavedFrame) error {
	pkt, ok, err := r.reader.Read(fr)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	return r.reassembler.Decode(pkt)
}

// Close writes the pending access unit and finalizes the open segment.
// It must be called after Run returned.
func (r *Recorder) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true

	// after a pipeline error the pending access unit is discarded,
	// while the open segment is still finalized.
	if r.reassembler.Err() == nil {
		err := r.reassembler.Flush()
		if err != nil {
			r.controller.Close()
			return err
		}
	}

	return r.controller.Close()
}

// Segment returns the open segment, or nil.
func (r *Recorder) Segment() *segment.Segment {
	return r.controller.Current()
}

// DroppedAccessUnits returns the number of access units received before the first refresh point.
func (r *Recorder) DroppedAccessUnits() int {
	return r.controller.Dropped()
}

// PacketsLost returns the number of video RTP packets missing from the sequence.
func (r *Recorder) PacketsLost() uint64 {
	return r.reader.PacketsLost()
}
