// Command audiostretchy changes the duration of speech and music recordings
// without changing their pitch.
//
// Usage:
//
//	audiostretchy [flags] INPUT OUTPUT
//	audiostretchy stretch [flags] INPUT OUTPUT
//	audiostretchy inspect [flags] INPUT
package main

import (
	"fmt"
	"os"

	"github.com/cwbudde/algo-stretch/cmd/audiostretchy/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
