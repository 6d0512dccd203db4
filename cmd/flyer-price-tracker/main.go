// Package main is the entry point for the flyer-price-tracker.
package main

import (
	"os"

	"github.com/donaldgifford/flyer-price-tracker/cmd/flyer-price-tracker/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
