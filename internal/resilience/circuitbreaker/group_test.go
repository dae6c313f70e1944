package circuitbreaker

import (
	"errors"
	"testing"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroup_ForReusesBreakerPerHost(t *testing.T) {
	g := NewGroup(testConfig())

	a := g.For("https://www.nasa.gov/feed")
	assert.Same(t, a, g.For("https://WWW.NASA.GOV/other"))
	assert.Equal(t, "test-circuit/www.nasa.gov", a.Name())

	b := g.For("https://www.astronomy.com/feed")
	assert.NotSame(t, a, b)
	assert.Equal(t, 2, g.Len())
}

func TestGroup_UnparsableURLSharesDefaultBreaker(t *testing.T) {
	g := NewGroup(testConfig())

	cb := g.For("://bad")
	assert.Equal(t, "test-circuit", cb.Name())
	assert.Same(t, cb, g.For("%zz"))
}

func TestGroup_FailuresStayWithTheirHost(t *testing.T) {
	g := NewGroup(testConfig())
	down := errors.New("down")

	dead := g.For("http://dead.example/rss")
	for i := 0; i < 5; i++ {
		_, _ = Do(dead, func() (any, error) { return nil, down })
	}
	require.Equal(t, gobreaker.StateOpen, dead.State())

	healthy := g.For("http://healthy.example/rss")
	got, err := Do(healthy, func() (string, error) { return "ok", nil })
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, gobreaker.StateClosed, healthy.State())
}
