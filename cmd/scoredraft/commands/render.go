package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cbegin/scoredraft-go"
	"github.com/cbegin/scoredraft-go/internal/tempo"
)

var (
	renderFile   string
	renderOutput string
)

var renderCmd = &cobra.Command{
	Use:   "render -f <song> [-o out.wav]",
	Short: "Render a song document to a WAV file",
	Long: `Render every track of a song, mix them and write the result as 16-bit WAV.

Malformed score elements are skipped with a warning; the rest of the song is
still rendered.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		song, err := readSong(renderFile)
		if err != nil {
			return err
		}
		e := newEngine()
		master, err := e.RenderSong(song)
		if err != nil {
			var pe *scoredraft.PartialError
			if !errors.As(err, &pe) {
				return err
			}
			logger.Warn("scoredraft: song rendered with skipped elements", "err", err)
		}
		if err := e.WriteTrackBufferToWav(master, renderOutput); err != nil {
			return err
		}
		n, _ := e.NumberOfSamples(master)
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d tracks, %.2fs)\n",
			renderOutput, len(song.Tracks), float64(n)/tempo.SampleRate)
		return nil
	},
}

func init() {
	renderCmd.Flags().StringVarP(&renderFile, "file", "f", "", "song document (.yaml, .json, .msgpack)")
	renderCmd.Flags().StringVarP(&renderOutput, "output", "o", "out.wav", "WAV file to write")
	rootCmd.AddCommand(renderCmd)
}
