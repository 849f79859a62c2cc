package trustlist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestCheckerIsTrusted(t *testing.T) {
	checker := NewChecker([]string{"Example.com", " bank.org "}, zap.NewNop())

	tests := []struct {
		host string
		want bool
	}{
		{host: "example.com", want: true},
		{host: "EXAMPLE.COM", want: true},
		{host: "mail.example.com", want: true},
		{host: "deep.sub.bank.org", want: true},
		{host: "bank.org", want: true},
		{host: "notexample.com", want: false},
		{host: "example.com.evil.net", want: false},
		{host: "other.org", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.host, func(t *testing.T) {
			assert.Equal(t, tt.want, checker.IsTrusted(tt.host))
		})
	}
}

func TestCheckerEmptyList(t *testing.T) {
	checker := NewChecker(nil, zap.NewNop())
	assert.False(t, checker.IsTrusted("example.com"))
}

func TestCheckerIgnoresBlankEntries(t *testing.T) {
	checker := NewChecker([]string{"", "  ", "example.com"}, zap.NewNop())
	assert.True(t, checker.IsTrusted("example.com"))
	assert.False(t, checker.IsTrusted("anything.else"))
}
