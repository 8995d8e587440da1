package headers

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/judocare/hevcrec/pkg/base"
)

// TransportProtocol is a transport protocol.
type TransportProtocol int

// transport protocols.
const (
	TransportProtocolUDP TransportProtocol = iota
	TransportProtocolTCP
)

// String implements fmt.Stringer.
func (p TransportProtocol) String() string {
	if p == TransportProtocolTCP {
		return "TCP"
	}
	return "UDP"
}

// Transport is a Transport header.
type Transport struct {
	// protocol of the stream
	Protocol TransportProtocol

	// whether the stream is unicast
	Unicast bool

	// (optional) interleaved frame ids
	InterleavedIDs *[2]int

	// (optional) SSRC of the packets of the stream
	SSRC *uint32
}

func parsePorts(val string) (*[2]int, error) {
	first, second, ok := strings.Cut(val, "-")
	if !ok {
		port, err := strconv.ParseUint(val, 10, 8)
		if err != nil {
			return nil, fmt.Errorf("invalid ports (%v)", val)
		}
		return &[2]int{int(port), int(port + 1)}, nil
	}

	port1, err := strconv.ParseUint(first, 10, 8)
	if err != nil {
		return nil, fmt.Errorf("invalid ports (%v)", val)
	}

	port2, err := strconv.ParseUint(second, 10, 8)
	if err != nil {
		return nil, fmt.Errorf("invalid ports (%v)", val)
	}

	return &[2]int{int(port1), int(port2)}, nil
}

// Unmarshal decodes a Transport header.
func (h *Transport) Unmarshal(v base.HeaderValue) error {
	if len(v) == 0 {
		return fmt.Errorf("value not provided")
	}

	if len(v) > 1 {
		return fmt.Errorf("value provided multiple times (%v)", v)
	}

	*h = Transport{}

	parts := strings.Split(v[0], ";")

	switch parts[0] {
	case "RTP/AVP", "RTP/AVP/UDP":
		h.Protocol = TransportProtocolUDP

	case "RTP/AVP/TCP":
		h.Protocol = TransportProtocolTCP

	default:
		return fmt.Errorf("invalid protocol (%v)", parts[0])
	}

	for _, part := range parts[1:] {
		key, val, _ := strings.Cut(strings.TrimSpace(part), "=")

		switch key {
		case "unicast":
			h.Unicast = true

		case "interleaved":
			ids, err := parsePorts(val)
			if err != nil {
				return err
			}
			h.InterleavedIDs = ids

		case "ssrc":
			// some cameras pad the SSRC with spaces or omit leading zeros
			tmp, err := strconv.ParseUint(strings.TrimSpace(val), 16, 32)
			if err != nil {
				return fmt.Errorf("invalid SSRC (%v)", val)
			}
			ssrc := uint32(tmp)
			h.SSRC = &ssrc
		}
	}

	return nil
}

// Marshal encodes a Transport header.
func (h Transport) Marshal() base.HeaderValue {
	var rets []string

	if h.Protocol == TransportProtocolTCP {
		rets = append(rets, "RTP/AVP/TCP")
	} else {
		rets = append(rets, "RTP/AVP")
	}

	if h.Unicast {
		rets = append(rets, "unicast")
	}

	if h.InterleavedIDs != nil {
		rets = append(rets, "interleaved="+strconv.FormatInt(int64(h.InterleavedIDs[0]), 10)+
			"-"+strconv.FormatInt(int64(h.InterleavedIDs[1]), 10))
	}

	if h.SSRC != nil {
		rets = append(rets, "ssrc="+fmt.Sprintf("%08X", *h.SSRC))
	}

	return base.HeaderValue{strings.Join(rets, ";")}
}
