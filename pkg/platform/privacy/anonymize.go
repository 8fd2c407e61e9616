// Package privacy masks client addresses before they reach logs.
package privacy

import (
	"net/netip"
)

// AnonymizeIP truncates an address to its network prefix: /24 for IPv4
// (including IPv4-mapped IPv6) and /48 for IPv6.
//
// Returns "unknown" for empty input and "invalid" when the value does not parse.
func AnonymizeIP(ip string) string {
	if ip == "" || ip == "unknown" {
		return "unknown"
	}

	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return "invalid"
	}
	addr = addr.Unmap().WithZone("")

	bits := 48
	if addr.Is4() {
		bits = 24
	}
	prefix, err := addr.Prefix(bits)
	if err != nil {
		return "invalid"
	}
	return prefix.Addr().String()
}
