// Package main is a minimal HTTP health check binary for use in distroless
// containers, where no shell or curl is available for HEALTHCHECK. It probes
// the liveness endpoint and exits 0 on any success-class status, 1 otherwise.
// Compile with CGO_ENABLED=0 for a fully static binary.
package main

import (
	"fmt"
	"net/http"
	"os"
	"time"
)

// probeTimeout stays under the orchestrator's own probe timeout so this
// process never gets killed mid-request.
const probeTimeout = 3 * time.Second

func main() {
	os.Exit(run())
}

func run() int {
	if err := probe(newProbeClient(), probeURL()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

// newProbeClient returns a client that treats redirects as failures rather
// than following them; only a direct 2xx counts.
func newProbeClient() *http.Client {
	return &http.Client{
		Timeout: probeTimeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// probeURL builds the liveness URL from the environment so the probe follows
// the server when the port is remapped.
func probeURL() string {
	port := os.Getenv("CUSTOMER_SERVICE_PORT")
	if port == "" {
		port = "8081"
	}
	return fmt.Sprintf("http://localhost:%s/healthz", port)
}

// probe performs one liveness request. Any level of 2xx counts as healthy.
func probe(client *http.Client, url string) error {
	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("health check failed: status %d", resp.StatusCode)
	}
	return nil
}
