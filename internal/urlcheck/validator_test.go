package urlcheck

import (
	"strings"
	"testing"

	"github.com/aman-churiwal/shortlink/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAccepts(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain https", "https://example.com/path", "https://example.com/path"},
		{"plain http", "http://example.com", "http://example.com"},
		{"trailing slash stripped", "https://example.com/path/", "https://example.com/path"},
		{"query string", "https://example.com/search?q=go", "https://example.com/search?q=go"},
		{"public ip", "http://93.184.216.34/", "http://93.184.216.34"},
		{"port", "https://example.com:8443/x", "https://example.com:8443/x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Validate(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"empty", ""},
		{"no scheme", "example.com/path"},
		{"ftp scheme", "ftp://example.com/file"},
		{"javascript scheme", "javascript:alert(1)"},
		{"loopback v4", "http://127.0.0.1/"},
		{"loopback high", "http://127.8.9.10/admin"},
		{"localhost", "http://localhost/"},
		{"localhost subdomain", "http://foo.localhost/"},
		{"localhost with port", "http://localhost:8080/"},
		{"metadata service", "http://169.254.169.254/latest/meta-data/"},
		{"rfc1918 10", "http://10.0.0.5/internal"},
		{"rfc1918 172", "http://172.16.4.2/"},
		{"rfc1918 192", "http://192.168.1.1/router"},
		{"unspecified", "http://0.0.0.0/"},
		{"v6 loopback", "http://[::1]/"},
		{"v6 link local", "http://[fe80::1]/"},
		{"too long", "https://example.com/" + strings.Repeat("a", MaxURLLength)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Validate(tt.in)
			require.Error(t, err)
			assert.Equal(t, errs.Validation, errs.KindOf(err))
		})
	}
}
