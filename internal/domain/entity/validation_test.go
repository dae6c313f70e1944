package entity

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateURLSyntax(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{name: "https", url: "https://www.nasa.gov/feed/", wantErr: false},
		{name: "http with port and query", url: "http://example.com:8080/feed?q=1", wantErr: false},
		{name: "fragment", url: "https://example.com/path#section", wantErr: false},
		{name: "empty", url: "", wantErr: true},
		{name: "ftp scheme", url: "ftp://example.com/feed", wantErr: true},
		{name: "file scheme", url: "file:///etc/passwd", wantErr: true},
		{name: "no scheme", url: "example.com", wantErr: true},
		{name: "no host", url: "https://", wantErr: true},
		{name: "malformed", url: "ht!tp://example.com", wantErr: true},
		{name: "too long", url: "https://example.com/" + strings.Repeat("a", maxURLLength), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateURLSyntax(tt.url)
			if tt.wantErr {
				var ve *ValidationError
				require.ErrorAs(t, err, &ve)
				assert.Equal(t, "url", ve.Field)
				return
			}
			assert.NoError(t, err)
		})
	}
}
