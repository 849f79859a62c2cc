package trustlist

import (
	"strings"

	"go.uber.org/zap"
)

// Checker reports whether a host is on the operator's trusted-domain
// list. Trusted hosts bypass analysis entirely.
type Checker struct {
	hosts  []string
	logger *zap.Logger
}

// NewChecker creates a new trustlist checker
func NewChecker(hosts []string, logger *zap.Logger) *Checker {
	normalized := make([]string, 0, len(hosts))
	for _, h := range hosts {
		h = strings.ToLower(strings.TrimSpace(h))
		if h != "" {
			normalized = append(normalized, h)
		}
	}

	if len(normalized) > 0 && logger != nil {
		logger.Info("Initialized trustlist checker", zap.Strings("hosts", normalized))
	}

	return &Checker{
		hosts:  normalized,
		logger: logger,
	}
}

// IsTrusted checks whether the host, or any parent domain of it, is on
// the trusted list.
func (c *Checker) IsTrusted(host string) bool {
	if len(c.hosts) == 0 {
		return false
	}
	host = strings.ToLower(strings.TrimSpace(host))

	for _, trusted := range c.hosts {
		if host == trusted || strings.HasSuffix(host, "."+trusted) {
			if c.logger != nil {
				c.logger.Debug("Host is trusted",
					zap.String("host", host),
					zap.String("matched", trusted))
			}
			return true
		}
	}

	return false
}
