// Package conn contains a RTSP connection that carries a raw stream of
// interleaved frames after negotiation.
package conn

import (
	"bufio"
	"io"

	"github.com/judocare/hevcrec/pkg/base"
)

const (
	readBufferSize = 4096
)

// Conn is a RTSP connection.
// Requests and responses are exchanged during negotiation, then
// the stream is read through Read.
type Conn struct {
	w  io.Writer
	br *bufio.Reader

	discarded int
}

// NewConn allocates a Conn.
func NewConn(rw io.ReadWriter) *Conn {
	return &Conn{
		w:  rw,
		br: bufio.NewReaderSize(rw, readBufferSize),
	}
}

// Read implements io.Reader.
// Bytes that have been buffered while reading responses are returned first.
func (c *Conn) Read(p []byte) (int, error) {
	return c.br.Read(p)
}

// ReadRequest reads a Request.
func (c *Conn) ReadRequest() (*base.Request, error) {
	var req base.Request
	err := req.Unmarshal(c.br)
	return &req, err
}

// ReadResponse reads a Response.
func (c *Conn) ReadResponse() (*base.Response, error) {
	var res base.Response
	err := res.Unmarshal(c.br)
	return &res, err
}

// ReadResponseIgnoreFrames reads a Response and discards the interleaved frames
// received before it, that are sent by cameras that start streaming early.
func (c *Conn) ReadResponseIgnoreFrames() (*base.Response, error) {
	for {
		byts, err := c.br.Peek(1)
		if err != nil {
			return nil, err
		}

		if byts[0] != base.InterleavedFrameMagicByte {
			return c.ReadResponse()
		}

		byts, err = c.br.Peek(base.InterleavedFrameHeaderSize)
		if err != nil {
			return nil, err
		}

		_, size, _ := base.DecodeInterleavedHeader(byts)

		_, err = c.br.Discard(base.InterleavedFrameHeaderSize + size)
		if err != nil {
			return nil, err
		}

		c.discarded++
	}
}

// DiscardedFrames returns the number of frames discarded while reading responses.
func (c *Conn) DiscardedFrames() int {
	return c.discarded
}

// WriteRequest writes a Request.
func (c *Conn) WriteRequest(req *base.Request) error {
	_, err := c.w.Write(req.Marshal())
	return err
}

// WriteResponse writes a Response.
func (c *Conn) WriteResponse(res *base.Response) error {
	_, err := c.w.Write(res.Marshal())
	return err
}

// WriteInterleavedFrame writes an interleaved frame, using buf as scratch space.
func (c *Conn) WriteInterleavedFrame(fr *base.InterleavedFrame, buf []byte) error {
	buf, err := fr.AppendTo(buf[:0])
	if err != nil {
		return err
	}

	_, err = c.w.Write(buf)
	return err
}
