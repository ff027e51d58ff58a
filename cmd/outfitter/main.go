// Command outfitter is a terminal client for the clothing catalog service.
//
// Usage:
//
//	outfitter                  Interactive search and recommendations
//	outfitter search <query>   Print search results
//	outfitter recommend <id>   Print recommendations for a product
//	outfitter events           JSONL event log viewer
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
