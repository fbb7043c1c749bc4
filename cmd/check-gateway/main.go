// Command check-gateway validates that PixUp gateway credentials are
// configured, and optionally pings the gateway health endpoint.
//
// Usage: check-gateway [--test-connection]
//
// Exit code 0 means the gateway is configured (and reachable, when
// --test-connection is given); 1 means missing/invalid configuration or
// an unreachable gateway.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/astrotarothub/backend/internal/infrastructure/gateway/pixup"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	testConnection := flag.Bool("test-connection", false, "ping the gateway health endpoint")
	flag.Parse()

	// Best-effort, same as the local dev workflow: a missing .env is fine.
	_ = godotenv.Load()

	apiKey := os.Getenv("PIXUP_API_KEY")
	apiSecret := os.Getenv("PIXUP_API_SECRET")
	baseURL := os.Getenv("PIXUP_BASE_URL")

	fmt.Println("PixUp configuration report")
	fmt.Printf("  PIXUP_API_KEY:    %s\n", present(apiKey))
	fmt.Printf("  PIXUP_API_SECRET: %s\n", present(apiSecret))
	if baseURL != "" {
		fmt.Printf("  PIXUP_BASE_URL:   %s\n", baseURL)
	}

	if apiKey == "" || apiSecret == "" {
		fmt.Println("\nPixUp credentials not configured. Set PIXUP_API_KEY and PIXUP_API_SECRET.")
		os.Exit(1)
	}

	if *testConnection {
		fmt.Println("\nTesting connection to PixUp...")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		client := pixup.NewClient(apiKey, apiSecret, baseURL, zap.NewNop())
		if err := client.Ping(ctx); err != nil {
			fmt.Printf("Connection failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Connection OK.")
	}
}

func present(v string) string {
	if v == "" {
		return "missing"
	}
	return "set"
}
