package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/geowaf/index"
)

var (
	indexDir    string
	indexClient string
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Regenerate index.html for an existing WAF folder",
	Long: `Write index.html for a WAF folder, linking every file in it by name.

Examples:
  geowaf index -d example_council -C "Example Council"`,
	Args: cobra.NoArgs,
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().StringVarP(&indexDir, "dir", "d", "", "WAF folder (mandatory)")
	indexCmd.Flags().StringVarP(&indexClient, "client", "C", "", "Name of client (mandatory)")
	_ = indexCmd.MarkFlagRequired("dir")
	_ = indexCmd.MarkFlagRequired("client")
}

func runIndex(cmd *cobra.Command, _ []string) error {
	files, err := index.Write(indexDir, indexClient)
	if err != nil {
		return fmt.Errorf("index creation error: %w", err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Index.html written successfully (%d entries)\n", len(files))
	return nil
}
