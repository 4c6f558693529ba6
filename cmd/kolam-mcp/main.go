package main

import (
	"fmt"
	"log"
	"os"

	"github.com/ironsheep/kolam-tools-mcp/internal/config"
	"github.com/ironsheep/kolam-tools-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Handle --version and -v flags
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("kolam-tools-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			fmt.Println("kolam-tools-mcp - MCP server for kolam dot and line analysis")
			fmt.Println()
			fmt.Println("Usage: kolam-mcp [options]")
			fmt.Println()
			fmt.Println("Options:")
			fmt.Println("  --version, -v    Print version information")
			fmt.Println("  --help, -h       Print this help message")
			fmt.Println()
			fmt.Println("Environment variables:")
			fmt.Println("  KOLAM_MCP_LOG_LEVEL=debug    Enable debug logging")
			fmt.Println("  KOLAM_MCP_CONFIG=<path>      Tuning file (default ./kolam-mcp.yaml if present)")
			fmt.Println()
			fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
			fmt.Println("Configure it in your MCP client (e.g., Claude Desktop).")
			return
		}
	}

	// Configure logging to stderr (stdout is for MCP protocol)
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	cfg, path, err := config.Load()
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}

	if cfg.Debug() {
		log.Printf("Kolam MCP Server v%s (built %s, commit %s)", Version, BuildTime, GitCommit)
		if path != "" {
			log.Printf("Loaded config from %s", path)
		}
	}

	if Version != "dev" {
		server.Version = Version
	}

	srv := server.New(cfg)
	if err := srv.Run(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
