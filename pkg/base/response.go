package base

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"
)

// StatusCode is the status code of a RTSP response.
type StatusCode int

// status codes.
const (
	StatusOK                        StatusCode = 200
	StatusBadRequest                StatusCode = 400
	StatusUnauthorized              StatusCode = 401
	StatusForbidden                 StatusCode = 403
	StatusNotFound                  StatusCode = 404
	StatusSessionNotFound           StatusCode = 454
	StatusMethodNotValidInThisState StatusCode = 455
	StatusUnsupportedTransport      StatusCode = 461
	StatusInternalServerError       StatusCode = 500
	StatusServiceUnavailable        StatusCode = 503
)

// StatusMessages contains the status messages associated with each status code.
var StatusMessages = map[StatusCode]string{
	StatusOK:                        "OK",
	StatusBadRequest:                "Bad Request",
	StatusUnauthorized:              "Unauthorized",
	StatusForbidden:                 "Forbidden",
	StatusNotFound:                  "Not Found",
	StatusSessionNotFound:           "Session Not Found",
	StatusMethodNotValidInThisState: "Method Not Valid In This State",
	StatusUnsupportedTransport:      "Unsupported Transport",
	StatusInternalServerError:       "Internal Server Error",
	StatusServiceUnavailable:        "Service Unavailable",
}

// Response is a RTSP response.
type Response struct {
	StatusCode    StatusCode
	StatusMessage string
	Header        Header
	Body          []byte
}

// Unmarshal reads a response.
func (res *Response) Unmarshal(br *bufio.Reader) error {
	line, err := readLine(br)
	if err != nil {
		return err
	}

	proto, rest, _ := strings.Cut(line, " ")
	if proto != rtspProtocol10 {
		return fmt.Errorf("expected '%s', got '%s'", rtspProtocol10, proto)
	}

	code, msg, _ := strings.Cut(rest, " ")

	statusCode, err := strconv.ParseUint(code, 10, 16)
	if err != nil || statusCode < 100 || statusCode > 999 {
		return fmt.Errorf("unable to parse status code")
	}
	res.StatusCode = StatusCode(statusCode)

	if msg == "" {
		return fmt.Errorf("empty status message")
	}
	res.StatusMessage = msg

	err = res.Header.read(br)
	if err != nil {
		return err
	}

	res.Body, err = readBody(res.Header, br)
	return err
}

// Marshal encodes a response.
// When StatusMessage is empty, the standard message of the status code is used.
func (res Response) Marshal() []byte {
	msg := res.StatusMessage
	if msg == "" {
		msg = StatusMessages[res.StatusCode]
	}

	return marshalMessage(
		rtspProtocol10+" "+strconv.FormatInt(int64(res.StatusCode), 10)+" "+msg,
		res.Header,
		res.Body)
}

// String implements fmt.Stringer.
func (res Response) String() string {
	return string(res.Marshal())
}
