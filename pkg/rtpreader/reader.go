// Package rtpreader contains a reader of RTP packets carried by interleaved frames.
package rtpreader

import (
	"github.com/pion/rtp"

	"github.com/judocare/hevcrec/internal/rtplossdetector"
	"github.com/judocare/hevcrec/pkg/base"
	"github.com/judocare/hevcrec/pkg/liberrors"
)

// VideoChannel is the interleaved channel of the video RTP stream.
const VideoChannel = 0

// Reader decodes RTP packets from the interleaved frames of a single channel.
// Frames of other channels are dropped.
//
// The returned packet is reused by the next call and its payload points into
// the frame, therefore it must not be retained.
type Reader struct {
	// interleaved channel to read.
	Channel int

	// called when packets are missing from the sequence (optional).
	OnPacketsLost func(count uint64)

	pkt          rtp.Packet
	lossDetector rtplossdetector.Detector
}

// Read decodes a RTP packet from a frame.
// It returns false if the frame belongs to another channel.
func (r *Reader) Read(fr *base.InterleavedFrame) (*rtp.Packet, bool, error) {
	if fr.Channel != r.Channel {
		return nil, false, nil
	}

	err := r.pkt.Unmarshal(fr.Payload)
	if err != nil {
		return nil, false, liberrors.ErrRTPPacketInvalid{Err: err}
	}

	lost := r.lossDetector.Update(r.pkt.SequenceNumber)
	if lost != 0 && r.OnPacketsLost != nil {
		r.OnPacketsLost(lost)
	}

	return &r.pkt, true, nil
}

// PacketsLost returns the number of packets missing from the sequence.
func (r *Reader) PacketsLost() uint64 {
	return r.lossDetector.Total()
}
