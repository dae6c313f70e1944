package fetcher

import (
	"context"
	"errors"
	"net"
	"testing"

	"astro-news/internal/usecase/fetch"

	"github.com/stretchr/testify/assert"
)

type fakeResolver map[string][]net.IPAddr

func (r fakeResolver) LookupIPAddr(_ context.Context, host string) ([]net.IPAddr, error) {
	if addrs, ok := r[host]; ok {
		return addrs, nil
	}
	return nil, errors.New("no such host")
}

func addrs(ips ...string) []net.IPAddr {
	out := make([]net.IPAddr, 0, len(ips))
	for _, ip := range ips {
		out = append(out, net.IPAddr{IP: net.ParseIP(ip)})
	}
	return out
}

func TestValidateURL(t *testing.T) {
	resolver := fakeResolver{
		"www.nasa.gov":      addrs("23.22.39.120"),
		"intranet.local":    addrs("10.0.0.5"),
		"mixed.example.com": addrs("93.184.216.34", "192.168.1.1"),
	}

	tests := []struct {
		name    string
		url     string
		deny    bool
		wantErr error
	}{
		{name: "public host", url: "https://www.nasa.gov/feed/", deny: true},
		{name: "private host", url: "http://intranet.local/", deny: true, wantErr: fetch.ErrPrivateIP},
		{name: "any private address", url: "http://mixed.example.com/", deny: true, wantErr: fetch.ErrPrivateIP},
		{name: "loopback literal", url: "http://127.0.0.1:8080/", deny: true, wantErr: fetch.ErrPrivateIP},
		{name: "ipv6 loopback", url: "http://[::1]/", deny: true, wantErr: fetch.ErrPrivateIP},
		{name: "link local", url: "http://169.254.169.254/latest/meta-data", deny: true, wantErr: fetch.ErrPrivateIP},
		{name: "public literal", url: "http://8.8.8.8/", deny: true},
		{name: "private allowed", url: "http://intranet.local/", deny: false},
		{name: "unresolvable", url: "http://nowhere.invalid/", deny: true, wantErr: fetch.ErrInvalidURL},
		{name: "bad scheme", url: "gopher://www.nasa.gov/", deny: true, wantErr: fetch.ErrInvalidURL},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateURL(context.Background(), resolver, tt.url, tt.deny)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestMetaAuthors(t *testing.T) {
	tests := []struct {
		name string
		html string
		want []string
	}{
		{
			name: "name meta",
			html: `<html><head><meta name="author" content="Jane Doe and John Roe"></head></html>`,
			want: []string{"Jane Doe", "John Roe"},
		},
		{
			name: "article author skips profile urls",
			html: `<html><head>
				<meta property="article:author" content="https://www.facebook.com/nasa">
				<meta name="parsely-author" content="Rob Garner">
			</head></html>`,
			want: []string{"Rob Garner"},
		},
		{
			name: "repeated tags deduplicated",
			html: `<html><head>
				<meta name="author" content="Jane Doe">
				<meta name="author" content="Jane Doe">
			</head></html>`,
			want: []string{"Jane Doe"},
		},
		{name: "none", html: `<html><head><title>x</title></head></html>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, metaAuthors([]byte(tt.html)))
		})
	}
}

func TestBylineAuthors(t *testing.T) {
	assert.Equal(t, []string{"Jane Doe"}, bylineAuthors("By Jane Doe"))
	assert.Equal(t, []string{"Jane Doe", "John Roe"}, bylineAuthors("by Jane Doe & John Roe"))
	assert.Nil(t, bylineAuthors("  "))
}
