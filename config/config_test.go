package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseArgs(t *testing.T) {
	cfg, err := ParseArgs([]string{
		"-host", "127.0.0.1",
		"-port", "9000",
		"-token-secret", "hunter2hunter2",
		"-token-ttl", "60",
		"-admin-emails", "boss@example.com, root@example.com",
		"-manager-emails", "lead@example.com",
		"-debug",
	})
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.Addr)
	assert.Equal(t, time.Minute, cfg.TokenTTL)
	assert.Equal(t, []string{"boss@example.com", "root@example.com"}, cfg.AdminEmails)
	assert.Equal(t, []string{"lead@example.com"}, cfg.ManagerEmails)
	assert.True(t, cfg.Debug)
}

func TestParseArgsRequiresTokenSecret(t *testing.T) {
	_, err := ParseArgs(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "token-secret")
}

func TestSplitEmails(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{" , ,", nil},
		{"a@b.c", []string{"a@b.c"}},
		{"a@b.c, d@e.f ,g@h.i", []string{"a@b.c", "d@e.f", "g@h.i"}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, SplitEmails(tt.in))
	}
}

func TestUrl(t *testing.T) {
	cfg := Config{Addr: "0.0.0.0:8080"}
	assert.Equal(t, "http://localhost:8080", cfg.Url())

	cfg.Addr = "srv:8080"
	assert.Equal(t, "http://srv:8080", cfg.Url())
}
