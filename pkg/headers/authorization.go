package headers

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/judocare/hevcrec/pkg/base"
)

// Authorization is an Authorization header.
// Only the Basic scheme is supported; the credentials are kept in their
// base64-encoded form, since cameras are provisioned with a pre-encoded string.
type Authorization struct {
	// base64 of "user:pass"
	BasicCredentials string
}

// BasicCredentials encodes a user and a password into a Basic credential string.
func BasicCredentials(user string, pass string) string {
	return base64.StdEncoding.EncodeToString([]byte(user + ":" + pass))
}

// Unmarshal decodes an Authorization header.
func (h *Authorization) Unmarshal(v base.HeaderValue) error {
	if len(v) == 0 {
		return fmt.Errorf("value not provided")
	}

	if len(v) > 1 {
		return fmt.Errorf("value provided multiple times (%v)", v)
	}

	method, v0, ok := strings.Cut(v[0], " ")
	if !ok {
		return fmt.Errorf("unable to split between method and keys (%v)", v[0])
	}

	if method != "Basic" {
		return fmt.Errorf("invalid method (%s)", method)
	}

	tmp, err := base64.StdEncoding.DecodeString(v0)
	if err != nil {
		return fmt.Errorf("invalid value")
	}

	if !strings.Contains(string(tmp), ":") {
		return fmt.Errorf("invalid value")
	}

	h.BasicCredentials = v0

	return nil
}

// Marshal encodes an Authorization header.
func (h Authorization) Marshal() base.HeaderValue {
	return base.HeaderValue{"Basic " + h.BasicCredentials}
}

// User returns the user and the password contained in the credentials.
func (h Authorization) User() (string, string, error) {
	tmp, err := base64.StdEncoding.DecodeString(h.BasicCredentials)
	if err != nil {
		return "", "", fmt.Errorf("invalid value")
	}

	user, pass, ok := strings.Cut(string(tmp), ":")
	if !ok {
		return "", "", fmt.Errorf("invalid value")
	}

	return user, pass, nil
}
