// Command scoredraft renders song documents to WAV and inspects the renderer
// classes available to them.
//
// Usage:
//
//	scoredraft [flags] <command> [args]
//
// Commands:
//
//	render    - Render a song document to a WAV file
//	duration  - Print the length of every track of a song
//	classes   - List instrument, percussion and singer classes
//	codegen   - Emit scripting wrappers for the registered classes
package main

import (
	"fmt"
	"os"

	"github.com/cbegin/scoredraft-go/cmd/scoredraft/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
