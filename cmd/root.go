// Package cmd provides CLI commands for geowaf.
package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// newLogger builds the process logger from LOG_LEVEL and LOG_FORMAT. Logs go
// to w so that build output on stdout stays clean; LOG_FORMAT=json suits a
// scheduler that ships logs elsewhere.
func newLogger(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

var rootCmd = &cobra.Command{
	Use:   "geowaf",
	Short: "Turn a GeoNetwork batch export into a Web Accessible Folder",
	Long: `geowaf converts a GeoNetwork batch export zip into a Web Accessible Folder
(WAF) that open data catalogues such as data.gov.uk can harvest.

Each dataset record is written as <title>.xml, the service record is written
as service.xml with its coupled resources pointing at those files by URL,
every dateStamp is set to the run date, and an index.html lists the folder.

Examples:
  geowaf build -p export.zip -C "Example Council" -u https://example.org/waf
  geowaf inspect -p export.zip
  geowaf index -d example_council -C "Example Council"`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	slog.SetDefault(newLogger(os.Stderr, os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT")))
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(indexCmd)
}
