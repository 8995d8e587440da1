// Package base contains the primitives of the RTSP protocol used by a client
// that receives a stream through interleaved frames.
package base

import (
	"bufio"
	"fmt"
	"strings"
)

// Method is the method of a RTSP request.
type Method string

// methods.
const (
	Describe Method = "DESCRIBE"
	Options  Method = "OPTIONS"
	Play     Method = "PLAY"
	Setup    Method = "SETUP"
	Teardown Method = "TEARDOWN"
)

// Request is a RTSP request.
type Request struct {
	Method Method
	URL    *URL
	Header Header
	Body   []byte
}

// Unmarshal reads a request.
func (req *Request) Unmarshal(br *bufio.Reader) error {
	line, err := readLine(br)
	if err != nil {
		return err
	}

	method, rest, ok1 := strings.Cut(line, " ")
	rawURL, proto, ok2 := strings.Cut(rest, " ")
	if !ok1 || !ok2 {
		return fmt.Errorf("invalid request line '%s'", line)
	}

	if method == "" {
		return fmt.Errorf("empty method")
	}
	req.Method = Method(method)

	if proto != rtspProtocol10 {
		return fmt.Errorf("expected '%s', got '%s'", rtspProtocol10, proto)
	}

	req.URL, err = ParseURL(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL (%v)", rawURL)
	}

	err = req.Header.read(br)
	if err != nil {
		return err
	}

	req.Body, err = readBody(req.Header, br)
	return err
}

// Marshal encodes a request.
// Credentials are removed from the URL.
func (req Request) Marshal() []byte {
	return marshalMessage(
		string(req.Method)+" "+req.URL.CloneWithoutCredentials().String()+" "+rtspProtocol10,
		req.Header,
		req.Body)
}

// String implements fmt.Stringer.
func (req Request) String() string {
	return string(req.Marshal())
}
