package chromedevtools

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strings"
	"time"
)

const DefaultHost = "127.0.0.1"
const DefaultPort = "9222"

// Swappable for tests.
var (
	newHTTPClient = func(timeout time.Duration) *http.Client {
		return &http.Client{Timeout: timeout}
	}
	inDockerFunc  = inDocker
	lookupIPAddrs = func(ctx context.Context, host string) ([]net.IPAddr, error) {
		return net.DefaultResolver.LookupIPAddr(ctx, host)
	}
)

func VersionURL(host, port string) string {
	host = strings.TrimSpace(host)
	if host == "" {
		host = DefaultHost
	}
	port = strings.TrimSpace(port)
	if port == "" {
		port = DefaultPort
	}
	return fmt.Sprintf("http://%s:%s/json/version", host, port)
}

// VersionURLResolved builds the devtools version URL, resolving hostnames to
// IPv4 when running inside Docker. Chrome binds its debug port to IPv4 only,
// so a hostname that resolves to ::1 first would fail the probe.
func VersionURLResolved(ctx context.Context, host, port string) (url, effectiveHost string) {
	effectiveHost = strings.TrimSpace(host)
	if effectiveHost == "" {
		effectiveHost = DefaultHost
		if inDockerFunc() {
			effectiveHost = "host.docker.internal"
		}
	}

	if inDockerFunc() && net.ParseIP(effectiveHost) == nil {
		if addrs, err := lookupIPAddrs(ctx, effectiveHost); err == nil {
			for _, a := range addrs {
				if v4 := a.IP.To4(); v4 != nil {
					effectiveHost = v4.String()
					break
				}
			}
		}
	}

	return VersionURL(effectiveHost, port), effectiveHost
}

func CheckReachable(ctx context.Context, url string, timeout time.Duration) ([]byte, error) {
	if strings.TrimSpace(url) == "" {
		return nil, fmt.Errorf("missing url")
	}
	if timeout <= 0 {
		timeout = 3 * time.Second
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := newHTTPClient(timeout).Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("unexpected status %s from %s", resp.Status, url)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1024*32))
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, fmt.Errorf("empty response from %s", url)
	}

	return body, nil
}

func inDocker() bool {
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true
	}
	data, err := os.ReadFile("/proc/1/cgroup")
	if err != nil {
		return false
	}
	return bytes.Contains(data, []byte("docker")) || bytes.Contains(data, []byte("containerd"))
}
