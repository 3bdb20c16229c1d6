// Command demoserver starts a local stand-in for Tempus Open that tempusfetch
// can be pointed at.
// Usage: go run ./cmd/demoserver [port]
// Default port: 9999
package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/raysh454/tempusfetch/internal/demoserver"
	"github.com/raysh454/tempusfetch/internal/logging"
)

func main() {
	cfg := demoserver.DefaultConfig()

	// Optional: custom port from command line
	if len(os.Args) > 1 {
		port, err := strconv.Atoi(os.Args[1])
		if err != nil || port < 1 || port > 65535 {
			log.Fatalf("Invalid port: %s", os.Args[1])
		}
		cfg.Port = port
	}

	logger, closer, err := logging.New(logging.Config{Level: "debug"}, os.Stderr)
	if err != nil {
		log.Fatalf("Logging: %v", err)
	}
	defer closer.Close()

	fmt.Println("===========================================")
	fmt.Println("   Tempus Open demo site")
	fmt.Println("===========================================")
	fmt.Println()
	fmt.Println("Pages hand out a Laravel session (XSRF-TOKEN and")
	fmt.Println("tempusopen_session cookies). Inertia visits without the")
	fmt.Println("matching token get 419, stale asset versions get 409.")
	fmt.Println()
	fmt.Printf("  tempusfetch --client http --base-url http://localhost:%d stats\n", cfg.Port)
	fmt.Printf("  curl -X POST http://localhost:%d/demo/bump   # faster times\n", cfg.Port)
	fmt.Println()

	server := demoserver.NewDemoServer(cfg, logger)
	if err := server.Start(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
