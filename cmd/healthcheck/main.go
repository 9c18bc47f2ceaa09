// Command healthcheck probes the local serve-mode instance for container
// health checks. It exits 0 when GET /healthz answers 200.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/garyellow/kebiao-ics/internal/config"
)

func main() {
	os.Exit(run(os.Getenv(config.EnvPort)))
}

func run(port string) int {
	if port == "" {
		port = "10000"
	}

	ctx, cancel := context.WithTimeout(context.Background(), config.HealthCheck)
	defer cancel()

	url := fmt.Sprintf("http://localhost:%s/healthz", port)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 1
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return 1
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return 1
	}
	return 0
}
