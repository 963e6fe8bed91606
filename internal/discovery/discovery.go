// Package discovery resolves the pipeline server's URI at executor
// bring-up (§4.7, §7): either via a DNS SRV lookup against a well-known
// service name, or by reading a URI file's first line. No third-party
// name-service client exists anywhere in the retrieval pack, so this uses
// net.LookupSRV directly — a small enough concern that pulling in a whole
// service-discovery client would be overkill, and the stdlib already
// expresses "resolve a named service over DNS" exactly.
package discovery

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
)

// Config selects how ResolveServerURI finds the server.
type Config struct {
	UseNameService bool
	URIFile        string
}

// serviceName is the well-known SRV service name the pipeline server
// registers itself under when name-service discovery is enabled.
const serviceName = "pipeline"

// ResolveServerURI returns the server address to dial, as a bare "host:port"
// gRPC target — unlike the executor's own clientURI (which carries a
// "tcp://" scheme purely as an identifying string reported to the server
// and never dialed locally), this value is handed straight to
// serverproxy.Dial.
func ResolveServerURI(ctx context.Context, cfg Config) (string, error) {
	if cfg.UseNameService {
		return resolveViaNameService(ctx, serviceName)
	}
	return resolveViaFile(cfg.URIFile)
}

func resolveViaNameService(ctx context.Context, name string) (string, error) {
	resolver := net.DefaultResolver
	_, addrs, err := resolver.LookupSRV(ctx, name, "tcp", name)
	if err != nil {
		return "", fmt.Errorf("discovery: SRV lookup for %q failed: %w", name, err)
	}
	if len(addrs) == 0 {
		return "", fmt.Errorf("discovery: SRV lookup for %q returned no records", name)
	}
	target := strings.TrimSuffix(addrs[0].Target, ".")
	return fmt.Sprintf("%s:%d", target, addrs[0].Port), nil
}

func resolveViaFile(path string) (string, error) {
	if path == "" {
		path = defaultURIFile()
	}

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("discovery: failed to open URI file %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", fmt.Errorf("discovery: failed to read URI file %s: %w", path, err)
		}
		return "", fmt.Errorf("discovery: URI file %s is empty", path)
	}
	uri := strings.TrimSpace(scanner.Text())
	if uri == "" {
		return "", fmt.Errorf("discovery: URI file %s has a blank first line", path)
	}
	return uri, nil
}

func defaultURIFile() string {
	dir, err := os.Getwd()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, serviceName+"_uri")
}
