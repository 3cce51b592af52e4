package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var codegenOutput string

var codegenCmd = &cobra.Command{
	Use:   "codegen [-o file]",
	Short: "Emit scripting wrappers for the registered classes",
	Long: `Generate one wrapper per registered class and interface extension.
Without -o the code is printed. With -o it is written to that file and the
numbered summary is printed instead.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		code, summary, err := newEngine().GenerateCode()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if codegenOutput == "" {
			fmt.Fprint(out, code)
			return nil
		}
		if err := os.WriteFile(codegenOutput, []byte(code), 0o644); err != nil {
			return err
		}
		fmt.Fprint(out, summary)
		return nil
	},
}

func init() {
	codegenCmd.Flags().StringVarP(&codegenOutput, "output", "o", "", "file to write the generated code to")
	rootCmd.AddCommand(codegenCmd)
}
