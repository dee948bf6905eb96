// Command admin provides database and account management for Pantry.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd(defaultConnector).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
