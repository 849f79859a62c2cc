package core

import (
	"errors"
	"net/url"
	"strings"
)

// ErrInvalidAddress is returned when an address cannot be reduced to a
// host identity.
var ErrInvalidAddress = errors.New("invalid address")

// HostIdentity reduces a raw address to the registrable host that keys
// the freshness cache and correlates async responses. Scheme, port, path,
// query and a leading "www." are ignored, so every address on the same
// host maps to the same identity.
func HostIdentity(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ErrInvalidAddress
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return "", ErrInvalidAddress
	}
	host := strings.ToLower(u.Hostname())
	host = strings.TrimPrefix(host, "www.")
	if host == "" {
		return "", ErrInvalidAddress
	}
	return host, nil
}
