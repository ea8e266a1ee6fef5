// Package network provides network interface enumeration for DNS-SD
// hostname discovery.
package network

import (
	"net"
)

// ExternalAddresses returns the unicast IP addresses of every up,
// non-loopback network interface, for DNS-SD hostname discovery's reverse
// PTR lookups (spec.md §4.3).
func ExternalAddresses() ([]net.IP, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}

	var addrs []net.IP
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		ifaceAddrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, a := range ifaceAddrs {
			ipNet, ok := a.(*net.IPNet)
			if !ok || ipNet.IP.IsLoopback() {
				continue
			}
			addrs = append(addrs, ipNet.IP)
		}
	}
	return addrs, nil
}
