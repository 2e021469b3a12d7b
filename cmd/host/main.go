// Package main is the entrypoint for the routing host.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/a2amesh/agent-mesh/internal/hostserver"
)

const usage = `Usage: host

Starts the routing host: discovers specialists from the directory, routes
queries to them, and serves /query for the UI.

Environment: REGISTRY_BASE_URL, SPECIALIST_SECRETS_JSON, LLM_BASE_URL,
LLM_API_KEY, LLM_MODEL_NAME, ROUTING_RULES_FILE. See README for full list.
`

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "help", "-h", "--help":
			fmt.Print(usage)
			return
		default:
			fmt.Fprintf(os.Stderr, "Unknown command %q.\n%s", os.Args[1], usage)
			os.Exit(1)
		}
	}

	if err := hostserver.Run(); err != nil {
		log.Fatalf("host: fatal error: %v", err)
	}
}
