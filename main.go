// ABOUTME: Entry point for the newsterm CLI
// ABOUTME: Terminal client for the news aggregation service

package main

import (
	"fmt"
	"os"

	"newsterm/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
