package rtph265

import (
	"fmt"

	"github.com/bluenviron/mediacommon/v2/pkg/codecs/h265"
	"github.com/pion/rtp"

	"github.com/judocare/hevcrec/pkg/liberrors"
)

const (
	// DefaultBufferSize is the default capacity of the access unit buffer.
	DefaultBufferSize = 512 * 1024

	statsPeriod = ClockRate * 20
)

var startCode = []byte{0x00, 0x00, 0x00, 0x01}

// Reassembler builds Annex-B access units from RTP/H265 packets.
// Single NAL unit packets and fragmentation units are supported.
// Packets are grouped into access units by their frame id.
type Reassembler struct {
	// capacity of the access unit buffer.
	// It defaults to DefaultBufferSize.
	BufferSize int

	// called when an access unit is complete.
	// au is reused after the callback returns.
	OnAccessUnit func(frameID uint32, au []byte) error

	// called when a VPS is received, after the access unit
	// of the previous frame has been passed to OnAccessUnit.
	OnRefreshPoint func() error

	// called when a frame id is not the successor of the previous one (optional).
	OnDiscontinuity func(prev uint32, cur uint32)

	// called periodically with the received payload bytes per second (optional).
	OnStats func(bytesPerSecond int)

	buf       []byte
	nalus     int
	frameID   uint32
	hasFrame  bool
	err       error
	statsTS   uint32
	statsSum  int
	hasStatTS bool
}

// Initialize initializes Reassembler.
func (r *Reassembler) Initialize() error {
	if r.BufferSize == 0 {
		r.BufferSize = DefaultBufferSize
	}
	if r.BufferSize < len(startCode)+payloadHeaderSize {
		return fmt.Errorf("buffer size (%d) is too small", r.BufferSize)
	}
	if r.OnAccessUnit == nil {
		return fmt.Errorf("OnAccessUnit is not set")
	}
	if r.OnRefreshPoint == nil {
		r.OnRefreshPoint = func() error { return nil }
	}
	if r.OnDiscontinuity == nil {
		r.OnDiscontinuity = func(uint32, uint32) {}
	}
	if r.OnStats == nil {
		r.OnStats = func(int) {}
	}

	r.buf = make([]byte, 0, r.BufferSize)
	r.buf = append(r.buf, startCode...)

	return nil
}

// FrameID returns the frame id of the access unit being built.
func (r *Reassembler) FrameID() (uint32, bool) {
	return r.frameID, r.hasFrame
}

// Err returns the error that stopped the Reassembler, if any.
func (r *Reassembler) Err() error {
	return r.err
}

// Decode processes a RTP packet.
// After an error, the Reassembler does not accept any other packet.
func (r *Reassembler) Decode(pkt *rtp.Packet) error {
	if r.err != nil {
		return r.err
	}

	err := r.decode(pkt)
	if err != nil {
		r.err = err
	}
	return err
}

// Flush passes the access unit being built to OnAccessUnit.
func (r *Reassembler) Flush() error {
	if r.err != nil {
		return r.err
	}

	err := r.flush()
	if err != nil {
		r.err = err
	}
	return err
}

func (r *Reassembler) decode(pkt *rtp.Packet) error {
	var ph PayloadHeader
	err := ph.Unmarshal(pkt.Payload)
	if err != nil {
		return err
	}

	frameID := FrameID(pkt.Timestamp)
	r.updateStats(pkt.Timestamp, len(pkt.Payload))

	switch {
	case ph.Type < h265.NALUType_AggregationUnit:
		if ph.Type == h265.NALUType_VPS_NUT {
			if !r.hasFrame || r.frameID != frameID {
				err = r.advance(frameID)
				if err != nil {
					return err
				}
			}

			err = r.OnRefreshPoint()
			if err != nil {
				return err
			}
		} else if !r.hasFrame || r.frameID != frameID {
			err = r.advance(frameID)
			if err != nil {
				return err
			}
		}

		return r.appendNALU(pkt.Payload)

	case ph.Type == h265.NALUType_FragmentationUnit:
		if len(pkt.Payload) < payloadHeaderSize+fuHeaderSize {
			return liberrors.ErrPayloadTooShort{
				Size: len(pkt.Payload),
				Min:  payloadHeaderSize + fuHeaderSize,
			}
		}

		var fu FUHeader
		err = fu.Unmarshal(pkt.Payload[payloadHeaderSize:])
		if err != nil {
			return err
		}
		data := pkt.Payload[payloadHeaderSize+fuHeaderSize:]

		if fu.Start {
			if !r.hasFrame || r.frameID != frameID {
				err = r.advance(frameID)
				if err != nil {
					return err
				}
			}

			err = r.appendNALU(NALUHeader(ph, fu).Marshal())
			if err != nil {
				return err
			}
			return r.append(data)
		}

		if !r.hasFrame || r.frameID != frameID {
			return liberrors.ErrFragmentMismatch{
				Expected:    r.frameID,
				HasExpected: r.hasFrame,
				Value:       frameID,
			}
		}

		return r.append(data)

	default:
		return liberrors.ErrUnsupportedPayload{Type: uint8(ph.Type)}
	}
}

// advance flushes the current access unit and starts the one of frameID.
func (r *Reassembler) advance(frameID uint32) error {
	err := r.flush()
	if err != nil {
		return err
	}

	if r.hasFrame && r.frameID+1 != frameID {
		r.OnDiscontinuity(r.frameID, frameID)
	}

	r.frameID = frameID
	r.hasFrame = true
	return nil
}

func (r *Reassembler) flush() error {
	if r.nalus == 0 {
		return nil
	}

	err := r.OnAccessUnit(r.frameID, r.buf)

	r.buf = r.buf[:len(startCode)]
	r.nalus = 0

	return err
}

// appendNALU appends the beginning of a NAL unit, preceded by a start code
// when it is not the first NAL unit of the access unit.
func (r *Reassembler) appendNALU(buf []byte) error {
	if r.nalus != 0 {
		err := r.append(startCode)
		if err != nil {
			return err
		}
	}

	err := r.append(buf)
	if err != nil {
		return err
	}

	r.nalus++
	return nil
}

func (r *Reassembler) append(buf []byte) error {
	size := len(r.buf) + len(buf)
	if size > cap(r.buf) {
		return liberrors.ErrAccessUnitOverflow{Size: size, Capacity: cap(r.buf)}
	}

	r.buf = append(r.buf, buf...)
	return nil
}

func (r *Reassembler) updateStats(ts uint32, size int) {
	if !r.hasStatTS {
		r.statsTS = ts
		r.hasStatTS = true
	}

	r.statsSum += size

	if elapsed := ts - r.statsTS; elapsed >= statsPeriod && elapsed < 1<<31 {
		r.OnStats(r.statsSum / int(elapsed/ClockRate))
		r.statsSum = 0
		r.statsTS = ts
	}
}
