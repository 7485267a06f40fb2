package subscription

import (
	"log/slog"
	"net"
)

const (
	// DefaultPort is the listener port used when none (or an invalid one) is given
	DefaultPort = 19000

	fallbackIP = "127.0.0.1"
)

// ResolvePort returns port when it is a valid TCP port, DefaultPort otherwise.
// Zero means "not given" and is not logged.
func ResolvePort(port int, logger *slog.Logger) int {
	if port == 0 {
		return DefaultPort
	}
	if port < 1 || port > 65535 {
		logger.Warn("listener port must be between 1 and 65535, using default",
			"requested", port, "port", DefaultPort)
		return DefaultPort
	}
	return port
}

// ResolveIP returns ip when it is a valid IPv4 or IPv6 address and the
// machine's LAN address otherwise. Empty means "not given" and is not logged.
func ResolveIP(ip string, logger *slog.Logger) string {
	if ip == "" {
		return LocalIP()
	}
	if net.ParseIP(ip) == nil {
		local := LocalIP()
		logger.Warn("invalid listener ip, using local ip", "requested", ip, "ip", local)
		return local
	}
	return ip
}

// LocalIP guesses the address this machine uses to reach the network.
// No packets are sent; dialing UDP only selects a route.
func LocalIP() string {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return fallbackIP
	}
	defer conn.Close()

	if addr, ok := conn.LocalAddr().(*net.UDPAddr); ok && addr.IP != nil {
		return addr.IP.String()
	}
	return fallbackIP
}
