package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cbegin/scoredraft-go"
)

var classesCmd = &cobra.Command{
	Use:   "classes",
	Short: "List instrument, percussion and singer classes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e := newEngine()
		w := cmd.OutOrStdout()
		printClasses(w, "Instruments", e.InstrumentClasses())
		printClasses(w, "Percussions", e.PercussionClasses())
		printClasses(w, "Singers", e.SingerClasses())
		printClasses(w, "Interfaces", e.Extensions())
		return nil
	},
}

func printClasses(w io.Writer, title string, classes []scoredraft.ClassInfo) {
	fmt.Fprintf(w, "%s:\n", title)
	for _, c := range classes {
		line := fmt.Sprintf("  %d: %s", c.ID, c.Name)
		if c.Comment != "" {
			line += " - " + strings.SplitN(c.Comment, "\n", 2)[0]
		}
		fmt.Fprintln(w, line)
	}
}

func init() {
	rootCmd.AddCommand(classesCmd)
}
