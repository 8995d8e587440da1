package base

import (
	"bufio"
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

var casesResponse = []struct {
	name string
	byts []byte
	res  Response
}{
	{
		"ok with single header",
		[]byte("RTSP/1.0 200 OK\r\n" +
			"CSeq: 1\r\n" +
			"Public: DESCRIBE, SETUP, TEARDOWN, PLAY, PAUSE\r\n" +
			"\r\n",
		),
		Response{
			StatusCode:    StatusOK,
			StatusMessage: "OK",
			Header: Header{
				"CSeq":   HeaderValue{"1"},
				"Public": HeaderValue{"DESCRIBE, SETUP, TEARDOWN, PLAY, PAUSE"},
			},
		},
	},
	{
		"ok with session",
		[]byte("RTSP/1.0 200 OK\r\n" +
			"CSeq: 3\r\n" +
			"Session: 1185485120;timeout=60\r\n" +
			"Transport: RTP/AVP/TCP;unicast;interleaved=0-1\r\n" +
			"\r\n",
		),
		Response{
			StatusCode:    StatusOK,
			StatusMessage: "OK",
			Header: Header{
				"CSeq":      HeaderValue{"3"},
				"Session":   HeaderValue{"1185485120;timeout=60"},
				"Transport": HeaderValue{"RTP/AVP/TCP;unicast;interleaved=0-1"},
			},
		},
	},
	{
		"ok with body",
		[]byte("RTSP/1.0 200 OK\r\n" +
			"CSeq: 2\r\n" +
			"Content-Length: 13\r\n" +
			"Content-Type: application/sdp\r\n" +
			"\r\n" +
			"v=0\r\n" +
			"s=Test\r\n",
		),
		Response{
			StatusCode:    StatusOK,
			StatusMessage: "OK",
			Header: Header{
				"CSeq":           HeaderValue{"2"},
				"Content-Length": HeaderValue{"13"},
				"Content-Type":   HeaderValue{"application/sdp"},
			},
			Body: []byte("v=0\r\ns=Test\r\n"),
		},
	},
}

func TestResponseUnmarshal(t *testing.T) {
	// keep res global to make sure that all its fields are overridden.
	var res Response

	for _, c := range casesResponse {
		t.Run(c.name, func(t *testing.T) {
			err := res.Unmarshal(bufio.NewReader(bytes.NewBuffer(c.byts)))
			require.NoError(t, err)
			require.Equal(t, c.res, res)
		})
	}
}

func TestResponseMarshal(t *testing.T) {
	for _, c := range casesResponse {
		t.Run(c.name, func(t *testing.T) {
			require.Equal(t, c.byts, c.res.Marshal())
		})
	}
}

func TestResponseUnmarshalSessionWhitespace(t *testing.T) {
	var res Response
	err := res.Unmarshal(bufio.NewReader(bytes.NewBufferString("RTSP/1.0 200 OK\r\n" +
		"CSeq: 2\r\n" +
		"Session: \t  12345678  \r\n" +
		"\r\n")))
	require.NoError(t, err)
	require.Equal(t, HeaderValue{"12345678"}, res.Header["Session"])
}

func TestResponseUnmarshalErrors(t *testing.T) {
	for _, ca := range []struct {
		name string
		byts []byte
		err  string
	}{
		{
			"empty",
			[]byte{},
			"EOF",
		},
		{
			"invalid protocol",
			[]byte("HTTP/1.1 200 OK\r\n"),
			"expected 'RTSP/1.0', got 'HTTP/1.1'",
		},
		{
			"invalid code",
			[]byte("RTSP/1.0 abc OK\r\n"),
			"unable to parse status code",
		},
		{
			"code out of range",
			[]byte("RTSP/1.0 099 OK\r\n"),
			"unable to parse status code",
		},
		{
			"empty message",
			[]byte("RTSP/1.0 200 \r\n"),
			"empty status message",
		},
		{
			"invalid content-length",
			[]byte("RTSP/1.0 200 OK\r\nContent-Length: aaa\r\n\r\n"),
			"invalid Content-Length",
		},
	} {
		t.Run(ca.name, func(t *testing.T) {
			var res Response
			err := res.Unmarshal(bufio.NewReader(bytes.NewBuffer(ca.byts)))
			require.EqualError(t, err, ca.err)
		})
	}
}

func FuzzResponseUnmarshal(f *testing.F) {
	for _, ca := range casesResponse {
		f.Add(ca.byts)
	}

	f.Add([]byte("RTSP/1.0 200 OK\r\n" +
		"Content-Length: 100\r\n" +
		"\r\n" +
		"abc"))

	f.Fuzz(func(t *testing.T, b []byte) {
		var res Response
		err := res.Unmarshal(bufio.NewReader(bytes.NewBuffer(b)))
		if err == nil {
			res.Marshal()
		}
	})
}
