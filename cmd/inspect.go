package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/geowaf/archive"
	"github.com/lehigh-university-libraries/geowaf/iso"
	"github.com/lehigh-university-libraries/geowaf/waf"
)

var (
	inspectArchive    string
	inspectRecordName string
	inspectVerbose    bool
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "List the records of an export without building anything",
	Long: `Classify every record in a GeoNetwork batch export and print its
identifier, kind and title. Nothing is written to disk.

Records that would stop a build (no hierarchy level, dataset without a
title) are listed with the error instead of a title, and the command exits
non-zero.

Examples:
  geowaf inspect -p export.zip
  geowaf inspect -p export.zip --verbose`,
	Args: cobra.NoArgs,
	RunE: runInspect,
}

func init() {
	inspectCmd.Flags().StringVarP(&inspectArchive, "path", "p", "", "Name of zip file (mandatory)")
	inspectCmd.Flags().StringVar(&inspectRecordName, "record-name", archive.DefaultRecordName, "Base name of record files in the archive")
	inspectCmd.Flags().BoolVarP(&inspectVerbose, "verbose", "v", false, "Show the coupled resources of service records")
	_ = inspectCmd.MarkFlagRequired("path")
}

func runInspect(cmd *cobra.Command, _ []string) error {
	records, err := waf.Inspect(inspectArchive, inspectRecordName)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "IDENTIFIER\tKIND\tTITLE")
	fmt.Fprintln(w, "----------\t----\t-----")

	failed := 0
	services := 0
	for _, r := range records {
		title := r.Title
		if r.Err != nil {
			title = "error: " + r.Err.Error()
			failed++
		}
		if r.Kind == iso.KindService {
			services++
			title = waf.ServiceFileName
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", r.Identifier, r.Kind, title)
		if inspectVerbose && len(r.CouplesTo) > 0 {
			fmt.Fprintf(w, "\t\toperatesOn: %s\n", strings.Join(r.CouplesTo, ", "))
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "\n%d records, %d service, %d with errors\n", len(records), services, failed)
	if failed > 0 {
		return fmt.Errorf("%d records cannot be built", failed)
	}
	return nil
}
