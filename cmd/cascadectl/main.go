// Command cascadectl runs searches and manages the blue/green index pair from a shell.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd(openBackend).Execute(); err != nil {
		os.Stderr.WriteString("Error: " + err.Error() + "\n")
		os.Exit(1)
	}
}
