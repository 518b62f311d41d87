// Package urlcheck screens destination URLs before a link is created.
// Destinations are redirect targets for arbitrary visitors, so internal
// addresses are rejected to keep the service from being used as a pivot
// into private networks.
package urlcheck

import (
	"errors"
	"net"
	"net/url"
	"strings"

	"github.com/aman-churiwal/shortlink/internal/errs"
)

const MaxURLLength = 2048

// Validate checks scheme, length and host class, returning the normalized
// destination. The URL is never fetched; IP literals and the localhost name
// are screened without DNS resolution.
func Validate(raw string) (string, error) {
	const op = "urlcheck.Validate"

	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", errs.E(op, errs.Validation, errors.New("url is required"))
	}
	if len(raw) > MaxURLLength {
		return "", errs.Ef(op, errs.Validation, "url exceeds %d characters", MaxURLLength)
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "", errs.E(op, errs.Validation, errors.New("url is not well-formed"))
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", errs.E(op, errs.Validation, errors.New("url must start with http:// or https://"))
	}

	host := parsed.Hostname()
	if host == "" {
		return "", errs.E(op, errs.Validation, errors.New("url has no host"))
	}

	if err := checkHost(host); err != nil {
		return "", errs.E(op, errs.Validation, err)
	}

	// Trailing slashes are noise for equality and redirects alike.
	return strings.TrimRight(raw, "/"), nil
}

func checkHost(host string) error {
	lower := strings.ToLower(host)
	if lower == "localhost" || strings.HasSuffix(lower, ".localhost") {
		return errors.New("destination host is not allowed")
	}

	ip := net.ParseIP(host)
	if ip == nil {
		return nil
	}

	switch {
	case ip.IsLoopback(),
		ip.IsPrivate(),
		ip.IsLinkLocalUnicast(),
		ip.IsLinkLocalMulticast(),
		ip.IsUnspecified():
		return errors.New("destination address is not allowed")
	}

	// Cloud metadata endpoint; link-local already catches it, but the
	// address is notorious enough to name.
	if ip.Equal(net.IPv4(169, 254, 169, 254)) {
		return errors.New("destination address is not allowed")
	}

	return nil
}
