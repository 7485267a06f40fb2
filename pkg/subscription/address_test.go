package subscription

import (
	"log/slog"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestResolvePort(t *testing.T) {
	logger := slog.Default()

	assert.Equal(t, DefaultPort, ResolvePort(0, logger))
	assert.Equal(t, DefaultPort, ResolvePort(70000, logger))
	assert.Equal(t, DefaultPort, ResolvePort(-1, logger))
	assert.Equal(t, 1, ResolvePort(1, logger))
	assert.Equal(t, 65535, ResolvePort(65535, logger))
	assert.Equal(t, 8080, ResolvePort(8080, logger))
}

func TestResolveIP(t *testing.T) {
	logger := slog.Default()

	assert.Equal(t, "192.168.1.10", ResolveIP("192.168.1.10", logger))
	assert.Equal(t, "::1", ResolveIP("::1", logger))

	fallback := ResolveIP("not-an-ip", logger)
	assert.NotNil(t, net.ParseIP(fallback))
	assert.Equal(t, LocalIP(), fallback)

	assert.NotNil(t, net.ParseIP(ResolveIP("", logger)))
}

func TestRenewInterval(t *testing.T) {
	assert.Equal(t, 510*time.Second, RenewInterval(600*time.Second))
	assert.Equal(t, 102*time.Second, RenewInterval(120*time.Second))
	assert.Equal(t, time.Second, RenewInterval(time.Second))
	assert.Equal(t, time.Second, RenewInterval(0))
}
