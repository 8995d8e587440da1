package container

import (
	"bufio"
	"fmt"
	"os"

	"github.com/bluenviron/mediacommon/v2/pkg/codecs/h264"
	"github.com/bluenviron/mediacommon/v2/pkg/formats/mpegts"
)

// MPEGTS is a Writer that writes H265 access units into MPEG-TS files.
type MPEGTS struct {
	// service provider written into the Service Description Table (optional).
	ServiceProvider string

	// service name written into the Service Description Table (optional).
	ServiceName string

	f     *os.File
	b     *bufio.Writer
	w     *mpegts.Writer
	track *mpegts.Track
}

// Open implements Writer.
func (m *MPEGTS) Open(path string) error {
	if m.f != nil {
		return fmt.Errorf("a file is already open")
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	b := bufio.NewWriter(f)

	if m.ServiceProvider != "" || m.ServiceName != "" {
		_, err = b.Write(marshalSDT(m.ServiceProvider, m.ServiceName))
		if err != nil {
			f.Close()
			return err
		}
	}

	m.track = &mpegts.Track{
		Codec: &mpegts.CodecH265{},
	}

	m.f = f
	m.b = b
	m.w = mpegts.NewWriter(m.b, []*mpegts.Track{m.track})

	return nil
}

// WriteSample implements Writer.
func (m *MPEGTS) WriteSample(pts int64, dts int64, au []byte) error {
	if m.f == nil {
		return fmt.Errorf("no file is open")
	}

	var nalus h264.AnnexB
	err := nalus.Unmarshal(au)
	if err != nil {
		return err
	}

	return m.w.WriteH265(m.track, pts, dts, nalus)
}

// Finalize implements Writer.
func (m *MPEGTS) Finalize() error {
	if m.f == nil {
		return fmt.Errorf("no file is open")
	}

	err := m.b.Flush()
	if err != nil {
		m.f.Close()
		m.reset()
		return err
	}

	err = m.f.Close()
	m.reset()
	return err
}

func (m *MPEGTS) reset() {
	m.f = nil
	m.b = nil
	m.w = nil
	m.track = nil
}
