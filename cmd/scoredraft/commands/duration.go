package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cbegin/scoredraft-go"
	"github.com/cbegin/scoredraft-go/internal/tempo"
)

var durationFile string

var durationCmd = &cobra.Command{
	Use:   "duration -f <song>",
	Short: "Print the length of every track of a song",
	Long: `Print each track's length in tempo units (48 per beat) and in seconds,
without rendering anything.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		song, err := readSong(durationFile)
		if err != nil {
			return err
		}
		durations, err := scoredraft.TrackDurations(song)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "TRACK\tUNITS\tSECONDS")
		for i, d := range durations {
			fmt.Fprintf(w, "%s\t%d\t%.3f\n", song.Tracks[i].Label(i), d, tempo.Seconds(song.Tempo, d))
		}
		return w.Flush()
	},
}

func init() {
	durationCmd.Flags().StringVarP(&durationFile, "file", "f", "", "song document (.yaml, .json, .msgpack)")
	rootCmd.AddCommand(durationCmd)
}
