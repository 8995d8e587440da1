package base

import (
	"fmt"
	"net/url"
	"strings"
)

// URL is a RTSP URL.
type URL url.URL

// ParseURL parses a RTSP URL.
func ParseURL(s string) (*URL, error) {
	u, err := url.Parse(s)
	if err != nil {
		return nil, err
	}

	if u.Scheme != "rtsp" {
		return nil, fmt.Errorf("unsupported scheme '%s'", u.Scheme)
	}

	if u.Opaque != "" {
		return nil, fmt.Errorf("URLs with opaque data are not supported")
	}

	return (*URL)(u), nil
}

// MustParseURL is like ParseURL but panics in case of errors.
func MustParseURL(s string) *URL {
	u, err := ParseURL(s)
	if err != nil {
		panic(err)
	}
	return u
}

// String implements fmt.Stringer.
func (u *URL) String() string {
	return (*url.URL)(u).String()
}

// CloneWithoutCredentials returns a copy of the URL without user information.
func (u *URL) CloneWithoutCredentials() *URL {
	nu := *u
	nu.User = nil
	return &nu
}

// AddControlAttribute returns the URL of a media, that is the stream URL
// followed by the control attribute of the media.
func (u *URL) AddControlAttribute(control string) *URL {
	nu := *u
	nu.User = nil
	nu.Path = strings.TrimSuffix(u.Path, "/") + "/" + control
	nu.RawPath = ""
	return &nu
}
