// Package headers contains various RTSP headers.
package headers

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/judocare/hevcrec/pkg/base"
)

// Session is a Session header.
type Session struct {
	// session id
	Session string

	// (optional) a timeout
	Timeout *uint
}

// Unmarshal decodes a Session header.
func (h *Session) Unmarshal(v base.HeaderValue) error {
	if len(v) == 0 {
		return fmt.Errorf("value not provided")
	}

	if len(v) > 1 {
		return fmt.Errorf("value provided multiple times (%v)", v)
	}

	v0 := strings.TrimSpace(v[0])

	i := strings.IndexByte(v0, ';')
	if i < 0 {
		h.Session = v0
		h.Timeout = nil
		return validSessionID(h.Session)
	}

	h.Session = strings.TrimSpace(v0[:i])
	h.Timeout = nil

	err := validSessionID(h.Session)
	if err != nil {
		return err
	}

	for _, part := range strings.Split(v0[i+1:], ";") {
		// remove leading spaces
		part = strings.TrimLeft(part, " \t")
		if part == "" {
			continue
		}

		key, val, ok := strings.Cut(part, "=")
		if !ok {
			return fmt.Errorf("invalid value (%v)", part)
		}

		if key != "timeout" {
			// unknown attributes are ignored
			continue
		}

		iv, err := strconv.ParseUint(val, 10, 32)
		if err != nil {
			return err
		}
		uiv := uint(iv)

		h.Timeout = &uiv
	}

	return nil
}

// Marshal encodes a Session header.
func (h Session) Marshal() base.HeaderValue {
	ret := h.Session

	if h.Timeout != nil {
		ret += ";timeout=" + strconv.FormatUint(uint64(*h.Timeout), 10)
	}

	return base.HeaderValue{ret}
}

func validSessionID(id string) error {
	if id == "" {
		return fmt.Errorf("empty session id")
	}

	if strings.ContainsAny(id, " \t") {
		return fmt.Errorf("invalid session id (%v)", id)
	}

	return nil
}
