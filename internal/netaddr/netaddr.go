// Package netaddr discovers a non-loopback local address for constructing
// the executor's clientURI (§4.7, §7).
package netaddr

import (
	"fmt"
	"net"
)

// OutboundIP returns the local address the kernel would use to reach the
// public internet, without sending any traffic: UDP sockets don't dial
// until the first write, so this just asks the routing table for the
// interface it would pick.
func OutboundIP() (string, error) {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return "", fmt.Errorf("netaddr: OutboundIP: %w", err)
	}
	defer conn.Close()

	addr, ok := conn.LocalAddr().(*net.UDPAddr)
	if !ok {
		return "", fmt.Errorf("netaddr: OutboundIP: unexpected local address type %T", conn.LocalAddr())
	}
	return addr.IP.String(), nil
}

// ClientURI builds the clientURI the executor registers under, given a
// bound TCP listener's port. The host portion is resolved via OutboundIP,
// falling back to the listener's own address if discovery fails (e.g. in a
// sandboxed network namespace with no default route).
func ClientURI(scheme string, listener *net.TCPListener) string {
	port := listener.Addr().(*net.TCPAddr).Port

	host, err := OutboundIP()
	if err != nil {
		host = listener.Addr().(*net.TCPAddr).IP.String()
	}
	return fmt.Sprintf("%s://%s:%d", scheme, host, port)
}
