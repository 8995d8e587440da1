package base

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"maps"
	"net/textproto"
	"slices"
	"strconv"
	"strings"
)

const (
	rtspProtocol10 = "RTSP/1.0"
	maxLineLength  = 2048
	maxHeaderCount = 255
	maxBodySize    = 128 * 1024
)

// HeaderValue is the list of values of a header key.
type HeaderValue []string

// Header is the header of a RTSP request or response.
type Header map[string]HeaderValue

func canonicalKey(key string) string {
	if strings.EqualFold(key, "cseq") {
		return "CSeq"
	}
	return textproto.CanonicalMIMEHeaderKey(key)
}

// Get returns the first value of a key, or an empty string.
func (h Header) Get(key string) string {
	if v := h[canonicalKey(key)]; len(v) != 0 {
		return v[0]
	}
	return ""
}

func (h *Header) read(br *bufio.Reader) error {
	*h = make(Header)

	for {
		line, err := readLine(br)
		if err != nil {
			return err
		}

		if line == "" {
			return nil
		}

		if len(*h) >= maxHeaderCount {
			return fmt.Errorf("header count exceeds %d", maxHeaderCount)
		}

		key, val, ok := strings.Cut(line, ":")
		if !ok || key == "" {
			return fmt.Errorf("invalid header '%s'", line)
		}

		key = canonicalKey(key)
		(*h)[key] = append((*h)[key], strings.Trim(val, " \t"))
	}
}

// readLine reads a line terminated by CRLF and strips the terminator.
func readLine(br *bufio.Reader) (string, error) {
	byts, err := br.ReadSlice('\n')
	if err != nil {
		if errors.Is(err, bufio.ErrBufferFull) {
			return "", fmt.Errorf("line exceeds %d bytes", br.Size())
		}
		return "", err
	}

	if len(byts) > maxLineLength {
		return "", fmt.Errorf("line exceeds %d bytes", maxLineLength)
	}

	if len(byts) < 2 || byts[len(byts)-2] != '\r' {
		return "", fmt.Errorf("line is not terminated by CRLF")
	}

	return string(byts[:len(byts)-2]), nil
}

func readBody(h Header, br *bufio.Reader) ([]byte, error) {
	cl, ok := h["Content-Length"]
	if !ok || len(cl) != 1 {
		return nil, nil
	}

	size, err := strconv.ParseUint(cl[0], 10, 31)
	if err != nil {
		return nil, fmt.Errorf("invalid Content-Length")
	}

	if size > maxBodySize {
		return nil, fmt.Errorf("Content-Length exceeds %d (it's %d)", maxBodySize, size)
	}

	if size == 0 {
		return nil, nil
	}

	body := make([]byte, size)
	_, err = io.ReadFull(br, body)
	if err != nil {
		return nil, err
	}

	return body, nil
}

// marshalMessage encodes the start line, the header sorted by key and the body.
// Content-Length is set from the body.
func marshalMessage(startLine string, h Header, body []byte) []byte {
	if len(body) != 0 {
		h = maps.Clone(h)
		if h == nil {
			h = make(Header)
		}
		h["Content-Length"] = HeaderValue{strconv.FormatInt(int64(len(body)), 10)}
	}

	var buf bytes.Buffer
	buf.WriteString(startLine + "\r\n")

	for _, key := range slices.Sorted(maps.Keys(h)) {
		for _, val := range h[key] {
			buf.WriteString(key + ": " + val + "\r\n")
		}
	}

	buf.WriteString("\r\n")
	buf.Write(body)

	return buf.Bytes()
}
