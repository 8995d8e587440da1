// Package rtplossdetector counts RTP packets missing from a sequence.
package rtplossdetector

// Detector counts the packets that are missing between consecutive sequence numbers.
type Detector struct {
	started bool
	next    uint16
	total   uint64
}

// Update processes the sequence number of a packet.
// It returns the number of packets that are missing before it.
// Late or duplicated packets are not counted and do not move the sequence.
func (d *Detector) Update(seq uint16) uint64 {
	if !d.started {
		d.started = true
		d.next = seq + 1
		return 0
	}

	diff := seq - d.next
	if diff >= 0x8000 {
		return 0
	}

	d.next = seq + 1
	d.total += uint64(diff)
	return uint64(diff)
}

// Total returns the number of missing packets since the first one.
func (d *Detector) Total() uint64 {
	return d.total
}
