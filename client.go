/*
Package hevcrec is a recorder of H265 streams of RTSP cameras.

A Client negotiates a RTSP session that carries the stream over the same TCP
connection, then a Recorder reassembles access units and writes them into
segments that are rotated at each refresh point.
*/
package hevcrec

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	psdp "github.com/pion/sdp/v3"

	"github.com/judocare/hevcrec/pkg/base"
	"github.com/judocare/hevcrec/pkg/bytecounter"
	"github.com/judocare/hevcrec/pkg/conn"
	"github.com/judocare/hevcrec/pkg/headers"
	"github.com/judocare/hevcrec/pkg/liberrors"
)

const (
	// DefaultPort is the default RTSP port.
	DefaultPort = 554

	// DefaultPath is the default path of the camera stream.
	DefaultPath = "profile0"

	// DefaultUserAgent is the default User-Agent header.
	DefaultUserAgent = "agent"

	// VideoEncoding is the expected encoding of the video media.
	VideoEncoding = "H265/90000"

	videoControl = "track=v"
	audioControl = "track=a"
)

// interleaved channels requested for each media.
var (
	VideoInterleavedIDs = [2]int{0, 1}
	AudioInterleavedIDs = [2]int{2, 3}
)

// Client is a RTSP client that reads a camera stream through interleaved frames.
type Client struct {
	//
	// RTSP parameters (all optional except Host)
	//
	// host name or address of the camera.
	Host string
	// port of the camera.
	// It defaults to DefaultPort.
	Port int
	// path of the stream.
	// It defaults to DefaultPath.
	Path string
	// pre-encoded Basic credentials.
	Credentials string
	// User-Agent header.
	// It defaults to DefaultUserAgent.
	UserAgent string
	// timeout of reads of the stream.
	// It defaults to zero, that disables the timeout.
	ReadTimeout time.Duration
	// timeout of negotiation requests.
	// It defaults to zero, that disables the timeout.
	RequestTimeout time.Duration
	// function used to initialize the TCP connection.
	// It defaults to (&net.Dialer{}).DialContext.
	DialContext func(ctx context.Context, network, address string) (net.Conn, error)

	//
	// callbacks (all optional)
	//
	// called before every request.
	OnRequest func(*base.Request)
	// called after every response.
	OnResponse func(*base.Response)

	ctx       context.Context
	ctxCancel func()
	nconn     net.Conn
	bc        *bytecounter.ByteCounter
	conn      *conn.Conn
	url       *base.URL
	cseq      int
	session   string
	closed    bool

	interrupted atomic.Bool

	connCloserDone chan struct{}
}

// Start connects to the camera.
func (c *Client) Start(ctx context.Context) error {
	if c.Host == "" {
		return fmt.Errorf("host is empty")
	}
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.Path == "" {
		c.Path = DefaultPath
	}
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	if c.DialContext == nil {
		c.DialContext = (&net.Dialer{}).DialContext
	}
	if c.OnRequest == nil {
		c.OnRequest = func(*base.Request) {}
	}
	if c.OnResponse == nil {
		c.OnResponse = func(*base.Response) {}
	}

	hostPort := net.JoinHostPort(c.Host, strconv.FormatInt(int64(c.Port), 10))

	u, err := base.ParseURL("rtsp://" + hostPort + "/" + strings.TrimPrefix(c.Path, "/"))
	if err != nil {
		return err
	}
	c.url = u

	c.ctx, c.ctxCancel = context.WithCancel(ctx)

	nconn, err := c.DialContext(c.ctx, "tcp", hostPort)
	if err != nil {
		c.ctxCancel()
		return err
	}

	c.nconn = nconn
	c.bc = bytecounter.New(c.nconn)
	c.conn = conn.NewConn(c.bc)

	c.connCloserDone = make(chan struct{})
	go c.runConnCloser()

	return nil
}

// the connection is closed when the context is canceled, in order to unblock reads.
func (c *Client) runConnCloser() {
	defer close(c.connCloserDone)
	<-c.ctx.Done()
	c.nconn.Close()
}

// Close sends a TEARDOWN request, without waiting for a response, and closes the connection.
func (c *Client) Close() error {
	if c.closed || c.nconn == nil {
		return nil
	}
	c.closed = true

	if c.session != "" && c.ctx.Err() == nil {
		c.nconn.SetDeadline(time.Now().Add(time.Second))
		c.do(&base.Request{
			Method: base.Teardown,
			URL:    c.url,
		}, true)
	}

	c.ctxCancel()
	<-c.connCloserDone
	return nil
}

// URL returns the URL of the stream.
func (c *Client) URL() *base.URL {
	return c.url
}

// Session returns the session id.
func (c *Client) Session() string {
	return c.session
}

// BytesReceived returns the number of bytes received from the camera.
func (c *Client) BytesReceived() uint64 {
	return c.bc.BytesReceived()
}

// BytesSent returns the number of bytes sent to the camera.
func (c *Client) BytesSent() uint64 {
	return c.bc.BytesSent()
}

// Interrupt unblocks Read, that returns liberrors.ErrClientTerminated.
// Unlike canceling the context, the connection stays open and Close can send a TEARDOWN request.
// It can be called from any goroutine.
func (c *Client) Interrupt() {
	c.interrupted.Store(true)
	c.nconn.SetReadDeadline(time.Now())
}

// Read reads raw bytes of the stream, that is a sequence of interleaved frames.
func (c *Client) Read(p []byte) (int, error) {
	if c.interrupted.Load() {
		return 0, liberrors.ErrClientTerminated{}
	}

	if c.ReadTimeout > 0 {
		c.nconn.SetReadDeadline(time.Now().Add(c.ReadTimeout))
	}

	n, err := c.conn.Read(p)
	if err != nil && (c.ctx.Err() != nil || c.interrupted.Load()) {
		return n, liberrors.ErrClientTerminated{}
	}
	return n, err
}

func (c *Client) do(req *base.Request, skipResponse bool) (*base.Response, error) {
	if req.Header == nil {
		req.Header = make(base.Header)
	}

	c.cseq++
	req.Header["CSeq"] = base.HeaderValue{strconv.FormatInt(int64(c.cseq), 10)}

	req.Header["User-Agent"] = base.HeaderValue{c.UserAgent}

	if c.Credentials != "" {
		req.Header["Authorization"] = headers.Authorization{
			BasicCredentials: c.Credentials,
		}.Marshal()
	}

	if c.session != "" {
		req.Header["Session"] = headers.Session{Session: c.session}.Marshal()
	}

	c.OnRequest(req)

	if c.RequestTimeout > 0 {
		c.nconn.SetDeadline(time.Now().Add(c.RequestTimeout))
		defer c.nconn.SetDeadline(time.Time{})
	}

	err := c.conn.WriteRequest(req)
	if err != nil {
		return nil, c.mapError(err)
	}

	if skipResponse {
		return nil, nil
	}

	res, err := c.conn.ReadResponseIgnoreFrames()
	if err != nil {
		return nil, c.mapError(err)
	}

	c.OnResponse(res)

	if res.StatusCode != base.StatusOK {
		return nil, liberrors.ErrClientBadStatusCode{
			Method:  req.Method,
			Code:    res.StatusCode,
			Message: res.StatusMessage,
		}
	}

	// get session from response
	if v, ok := res.Header["Session"]; ok {
		var sx headers.Session
		err = sx.Unmarshal(v)
		if err != nil {
			return nil, liberrors.ErrClientSessionHeaderInvalid{Err: err}
		}
		c.session = sx.Session
	}

	return res, nil
}

func (c *Client) mapError(err error) error {
	if c.ctx.Err() != nil {
		return liberrors.ErrClientTerminated{}
	}
	return err
}

// Options sends an OPTIONS request.
func (c *Client) Options() (*base.Response, error) {
	return c.do(&base.Request{
		Method: base.Options,
		URL:    c.url,
	}, false)
}

// Describe sends a DESCRIBE request.
// The response must contain a session id.
func (c *Client) Describe() (*base.Response, error) {
	res, err := c.do(&base.Request{
		Method: base.Describe,
		URL:    c.url,
		Header: base.Header{
			"Accept": base.HeaderValue{"application/sdp"},
		},
	}, false)
	if err != nil {
		return nil, err
	}

	if c.session == "" {
		return nil, liberrors.ErrClientSessionHeaderMissing{Method: base.Describe}
	}

	return res, nil
}

// Setup sends a SETUP request for a media, asking to receive it through interleaved frames.
func (c *Client) Setup(control string, interleavedIDs [2]int) (*base.Response, error) {
	ids := interleavedIDs

	res, err := c.do(&base.Request{
		Method: base.Setup,
		URL:    c.url.AddControlAttribute(control),
		Header: base.Header{
			"Transport": headers.Transport{
				Protocol:       headers.TransportProtocolTCP,
				Unicast:        true,
				InterleavedIDs: &ids,
			}.Marshal(),
		},
	}, false)
	if err != nil {
		return nil, err
	}

	if v, ok := res.Header["Transport"]; ok {
		var th headers.Transport
		err = th.Unmarshal(v)
		if err != nil {
			return nil, liberrors.ErrClientTransportHeaderInvalid{Err: err}
		}

		if th.InterleavedIDs != nil && *th.InterleavedIDs != interleavedIDs {
			return nil, liberrors.ErrClientTransportHeaderInvalidInterleavedIDs{
				Expected: interleavedIDs,
				Value:    *th.InterleavedIDs,
			}
		}
	}

	return res, nil
}

// Play sends a PLAY request.
// After the response, the stream can be read through Read.
func (c *Client) Play() (*base.Response, error) {
	return c.do(&base.Request{
		Method: base.Play,
		URL:    c.url,
		Header: base.Header{
			"Range": base.HeaderValue{"npt=0-"},
		},
	}, false)
}

// Negotiate performs the whole request sequence, from OPTIONS to PLAY.
// It returns the DESCRIBE response.
func (c *Client) Negotiate() (*base.Response, error) {
	_, err := c.Options()
	if err != nil {
		return nil, err
	}

	desc, err := c.Describe()
	if err != nil {
		return nil, err
	}

	_, err = c.Setup(videoControl, VideoInterleavedIDs)
	if err != nil {
		return nil, err
	}

	// the audio media is received but not recorded
	_, err = c.Setup(audioControl, AudioInterleavedIDs)
	if err != nil {
		return nil, err
	}

	_, err = c.Play()
	if err != nil {
		return nil, err
	}

	return desc, nil
}

// FindVideoEncoding returns the encoding of the video media described by a SDP.
func FindVideoEncoding(body []byte) (string, error) {
	var sd psdp.SessionDescription
	err := sd.Unmarshal(body)
	if err != nil {
		return "", fmt.Errorf("invalid SDP: %w", err)
	}

	for _, md := range sd.MediaDescriptions {
		if md.MediaName.Media != "video" {
			continue
		}

		rtpmap, ok := md.Attribute("rtpmap")
		if !ok {
			return "", fmt.Errorf("video media has no rtpmap attribute")
		}

		_, encoding, ok := strings.Cut(rtpmap, " ")
		if !ok {
			return "", fmt.Errorf("invalid rtpmap attribute (%v)", rtpmap)
		}

		return strings.TrimSpace(encoding), nil
	}

	return "", fmt.Errorf("no video media found")
}
