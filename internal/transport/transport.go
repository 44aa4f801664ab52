// Package transport holds the HTTP plumbing shared by the pfSense and
// Pi-hole clients.
package transport

import (
	"bytes"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// DefaultTimeout bounds a single request against either appliance.
const DefaultTimeout = 30 * time.Second

// UserAgent is sent on every outgoing request.
const UserAgent = "dhcp-dns-sync/1.0"

// ErrUnexpectedPayload is returned when a JSON object carries no data field.
var ErrUnexpectedPayload = errors.New("unexpected payload")

// NewHTTPClient returns a client with the given timeout. When insecure is
// set, server certificates are not verified; appliances on the local network
// usually present self-signed certificates.
func NewHTTPClient(timeout time.Duration, insecure bool) *http.Client {
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	tr := http.DefaultTransport.(*http.Transport).Clone()
	if insecure {
		tr.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: tr,
	}
}

// BaseURL builds a service URL from its parts.
func BaseURL(protocol, address string, port int) string {
	return fmt.Sprintf("%s://%s:%d", protocol, address, port)
}

// UnwrapData returns the contents of a top-level "data" field when the body
// is an envelope object, or the body itself otherwise.
func UnwrapData(body []byte) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return trimmed, nil
	}

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if envelope.Data == nil {
		return nil, fmt.Errorf("%w: object without data field", ErrUnexpectedPayload)
	}
	return envelope.Data, nil
}
