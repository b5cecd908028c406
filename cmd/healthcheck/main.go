package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"connwatch/pkg/config"
	"connwatch/pkg/retry"

	"github.com/joho/godotenv"
)

// Container healthcheck for the viewer: exits 0 when /health answers, 1
// otherwise.
func main() {
	configFlag := flag.String("config", "", "path to config file")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load(config.ResolvePath(*configFlag))
	if err != nil {
		// A broken config still yields usable defaults.
		log.Printf("healthcheck: load config: %v", err)
	}
	cfg.Sanitize()

	addr := cfg.Web.Address
	if strings.HasPrefix(addr, ":") {
		addr = "127.0.0.1" + addr
	}
	url := fmt.Sprintf("http://%s/health", addr)

	client := &http.Client{Timeout: 5 * time.Second}

	// A viewer still binding its listener answers on a later attempt. Total
	// attempt budget stays under the container healthcheck timeout.
	retryCfg := retry.Config{
		Enabled:      true,
		MaxAttempts:  2,
		InitialDelay: 300 * time.Millisecond,
		MaxDelay:     time.Second,
		Multiplier:   2.0,
		Jitter:       false,
	}
	if err := retry.Retry(context.Background(), retryCfg, func() error {
		return check(client, url)
	}); err != nil {
		log.Printf("healthcheck: %v", err)
		os.Exit(1)
	}
	os.Exit(0)
}

func check(client *http.Client, url string) error {
	resp, err := client.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s returned %d", url, resp.StatusCode)
	}
	return nil
}
