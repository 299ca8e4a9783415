// Command substack-tools serves read-only Substack query tools over HTTP or
// runs them once from the command line.
//
// Usage:
//
//	substack-tools serve [--addr :8080]
//	substack-tools call substack_get_posts '{"publication_subdomain":"lenny","limit":5}'
//	substack-tools tools
package main

import (
	"fmt"
	"os"

	_ "github.com/joho/godotenv/autoload"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
