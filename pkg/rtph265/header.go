// Package rtph265 contains a reassembler of H265 access units from RTP packets.
// Payload format: https://datatracker.ietf.org/doc/html/rfc7798
package rtph265

import (
	"github.com/bluenviron/mediacommon/v2/pkg/codecs/h265"

	"github.com/judocare/hevcrec/pkg/liberrors"
)

const (
	// ClockRate is the RTP clock rate of H265.
	ClockRate = 90000

	// FrameRate is the frame rate of the camera.
	FrameRate = 25

	// TicksPerFrame is the number of RTP clock ticks between two frames.
	TicksPerFrame = ClockRate / FrameRate

	payloadHeaderSize = 2
	fuHeaderSize      = 1
)

// FrameID returns the frame a RTP timestamp belongs to.
func FrameID(ts uint32) uint32 {
	return ts / TicksPerFrame
}

// PayloadHeader is a H265 RTP payload header, which shares the layout of a NAL unit header.
//
//	+---------------+---------------+
//	|0|1|2|3|4|5|6|7|0|1|2|3|4|5|6|7|
//	+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
//	|F|   Type    |  LayerId  | TID |
//	+-------------+-----------------+
type PayloadHeader struct {
	// forbidden zero bit (1 bit).
	Forbidden bool

	// NAL unit or payload type (6 bits).
	Type h265.NALUType

	// layer id (6 bits).
	LayerID uint8

	// temporal id plus one (3 bits).
	TID uint8
}

// Unmarshal decodes a PayloadHeader.
func (h *PayloadHeader) Unmarshal(buf []byte) error {
	if len(buf) < payloadHeaderSize {
		return liberrors.ErrPayloadTooShort{Size: len(buf), Min: payloadHeaderSize}
	}

	h.Forbidden = (buf[0] >> 7) != 0
	h.Type = h265.NALUType((buf[0] >> 1) & 0b111111)
	h.LayerID = (buf[0]&0b1)<<5 | buf[1]>>3
	h.TID = buf[1] & 0b111

	return nil
}

// MarshalTo encodes a PayloadHeader.
func (h PayloadHeader) MarshalTo(buf []byte) int {
	buf[0] = byte(h.Type&0b111111)<<1 | (h.LayerID>>5)&0b1
	if h.Forbidden {
		buf[0] |= 1 << 7
	}
	buf[1] = (h.LayerID&0b11111)<<3 | h.TID&0b111
	return payloadHeaderSize
}

// Marshal encodes a PayloadHeader.
func (h PayloadHeader) Marshal() []byte {
	buf := make([]byte, payloadHeaderSize)
	h.MarshalTo(buf)
	return buf
}

// FUHeader is the header of a fragmentation unit, that follows the payload header.
//
//	+---------------+
//	|0|1|2|3|4|5|6|7|
//	+-+-+-+-+-+-+-+-+
//	|S|E|  FuType   |
//	+---------------+
type FUHeader struct {
	// first fragment of a NAL unit.
	Start bool

	// last fragment of a NAL unit.
	End bool

	// type of the fragmented NAL unit (6 bits).
	Type h265.NALUType
}

// Unmarshal decodes a FUHeader.
func (h *FUHeader) Unmarshal(buf []byte) error {
	if len(buf) < fuHeaderSize {
		return liberrors.ErrPayloadTooShort{Size: len(buf), Min: fuHeaderSize}
	}

	h.Start = (buf[0] >> 7) != 0
	h.End = (buf[0]>>6)&0b1 != 0
	h.Type = h265.NALUType(buf[0] & 0b111111)

	return nil
}

// Marshal encodes a FUHeader.
func (h FUHeader) Marshal() byte {
	b := byte(h.Type & 0b111111)
	if h.Start {
		b |= 1 << 7
	}
	if h.End {
		b |= 1 << 6
	}
	return b
}

// NALUHeader returns the header of the NAL unit carried by a fragmentation unit.
// Layer id and temporal id are taken from the payload header, the type from the FU header.
func NALUHeader(ph PayloadHeader, fu FUHeader) PayloadHeader {
	return PayloadHeader{
		Forbidden: ph.Forbidden,
		Type:      fu.Type,
		LayerID:   ph.LayerID,
		TID:       ph.TID,
	}
}
