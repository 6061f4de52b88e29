// Command trendboard serves and renders the GitHub trending repositories table.
package main

import "os"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
