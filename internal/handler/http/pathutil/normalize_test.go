package pathutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		name string
		path string
		want string
	}{
		{name: "root", path: "/", want: "/"},
		{name: "known route", path: "/articles", want: "/articles"},
		{name: "trailing slash", path: "/summaries/", want: "/summaries"},
		{name: "query string", path: "/api/articles?pretty=1", want: "/api/articles"},
		{name: "post action", path: "/summaries/generate", want: "/summaries/generate"},
		{name: "feed", path: "/feed.xml", want: "/feed.xml"},
		{name: "unknown", path: "/wp-login.php", want: Unmatched},
		{name: "unknown nested", path: "/articles/123", want: Unmatched},
		{name: "many slashes", path: "///", want: "/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizePath(tt.path))
		})
	}
}

func TestCardinality(t *testing.T) {
	assert.Equal(t, len(routes)+1, Cardinality())
}
