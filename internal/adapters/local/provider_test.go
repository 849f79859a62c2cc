package local

import (
	"context"
	"crypto/x509/pkix"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestFetchDomainFactsUnparseableAddress(t *testing.T) {
	p := NewProvider(nil, time.Second, zap.NewNop())

	facts, err := p.FetchDomainFacts(context.Background(), "http://[bad")
	require.NoError(t, err)
	assert.Equal(t, "could not parse address", facts.Error)
}

func TestWhoisDate(t *testing.T) {
	parsed := time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC)

	t.Run("pre-parsed wins", func(t *testing.T) {
		got := whoisDate(&parsed, "1999-01-01")
		require.NotNil(t, got)
		assert.Equal(t, parsed, *got)
	})

	t.Run("layout fallbacks", func(t *testing.T) {
		for _, raw := range []string{
			"2020-01-02T00:00:00Z",
			"2020-01-02 00:00:00",
			"2020-01-02",
			"02-Jan-2020",
			"2020.01.02",
		} {
			got := whoisDate(nil, raw)
			require.NotNil(t, got, "raw=%q", raw)
			assert.Equal(t, 2020, got.Year(), "raw=%q", raw)
		}
	})

	t.Run("unparseable", func(t *testing.T) {
		assert.Nil(t, whoisDate(nil, "sometime in 2020"))
		assert.Nil(t, whoisDate(nil, ""))
	})
}

func TestNameToMap(t *testing.T) {
	name := pkix.Name{
		CommonName:   "example.com",
		Organization: []string{"Example Inc"},
		Country:      []string{"US"},
	}
	m := nameToMap(name)
	assert.Equal(t, "example.com", m["CN"])
	assert.Equal(t, "Example Inc", m["O"])
	assert.Equal(t, "US", m["C"])

	assert.Nil(t, nameToMap(pkix.Name{}))
}

func TestIPStrings(t *testing.T) {
	values, ok := ipStrings([]net.IP{net.ParseIP("192.0.2.1")}, nil)
	require.True(t, ok)
	assert.Equal(t, []string{"192.0.2.1"}, values)

	notFound := &net.DNSError{IsNotFound: true}
	values, ok = ipStrings(nil, notFound)
	require.True(t, ok)
	assert.Empty(t, values)

	_, ok = ipStrings(nil, &net.DNSError{IsTimeout: true})
	assert.False(t, ok)
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, isNotFound(&net.DNSError{IsNotFound: true}))
	assert.False(t, isNotFound(&net.DNSError{}))
	assert.False(t, isNotFound(nil))
}
