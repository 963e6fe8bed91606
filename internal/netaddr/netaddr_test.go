package netaddr

import (
	"net"
	"strings"
	"testing"
)

func TestOutboundIPIsNotLoopback(t *testing.T) {
	ip, err := OutboundIP()
	if err != nil {
		t.Skipf("OutboundIP unavailable in this sandbox: %v", err)
	}
	parsed := net.ParseIP(ip)
	if parsed == nil {
		t.Fatalf("OutboundIP() = %q, not a valid IP", ip)
	}
	if parsed.IsLoopback() {
		t.Errorf("OutboundIP() = %q, want a non-loopback address", ip)
	}
}

func TestClientURIFormat(t *testing.T) {
	lis, err := net.ListenTCP("tcp", &net.TCPAddr{Port: 0})
	if err != nil {
		t.Fatalf("ListenTCP: %v", err)
	}
	defer lis.Close()

	uri := ClientURI("tcp", lis)
	if !strings.HasPrefix(uri, "tcp://") {
		t.Errorf("ClientURI() = %q, want tcp:// prefix", uri)
	}
}
