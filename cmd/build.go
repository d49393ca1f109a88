package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/lehigh-university-libraries/geowaf/config"
	"github.com/lehigh-university-libraries/geowaf/waf"
)

var (
	buildArchive         string
	buildClient          string
	buildURL             string
	buildOutputRoot      string
	buildTempRoot        string
	buildRecordName      string
	buildRunDate         string
	buildServicePolicy   string
	buildTimestampPolicy string
	buildClean           bool
	buildConfigFile      string
	buildReportFile      string
	buildMetricsFile     string
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build a WAF from a GeoNetwork batch export",
	Long: `Create a single folder of metadata in XML format from a GeoNetwork batch
export zip.

The archive path, client name and WAF URL are mandatory. They may come from
flags, a YAML config file (--config), GEOWAF_* environment variables or a
.env file in the working directory; flags win.

The output folder is <output-root>/<client name in lower case, spaces as _>.
The catalog is built in scratch space and moved there only once every record
has been placed and stamped; a failed build leaves the folder untouched.
Without --clean, XML files from earlier builds that this archive did not
produce stay in place, are listed in the index and are reported as warnings.

Examples:
  # Minimal build into ./example_council
  geowaf build -p export.zip -C "Example Council" -u https://example.org/waf

  # Reproducible build with a pinned date, removing stale files first
  geowaf build -p export.zip -C "Example Council" -u https://example.org/waf \
    --date 2024-01-31 --clean

  # Keep a run report and node_exporter textfile metrics
  geowaf build --config waf.yaml --report run.json --metrics-file geowaf.prom`,
	Args: cobra.NoArgs,
	RunE: runBuild,
}

func init() {
	f := buildCmd.Flags()
	f.StringVarP(&buildArchive, "path", "p", "", "Name of zip file (mandatory)")
	f.StringVarP(&buildClient, "client", "C", "", "Name of client (mandatory)")
	f.StringVarP(&buildURL, "url", "u", "", "URL for WAF (mandatory)")
	f.StringVarP(&buildOutputRoot, "output-root", "o", "", "Directory to create the client folder in (default: .)")
	f.StringVar(&buildTempRoot, "temp-root", "", "Directory for scratch space (default: system temp)")
	f.StringVar(&buildRecordName, "record-name", "", "Base name of record files in the archive (default: metadata.xml)")
	f.StringVar(&buildRunDate, "date", "", "Date to stamp into every document, YYYY-MM-DD (default: today)")
	f.StringVar(&buildServicePolicy, "service-policy", "", "What to do with more than one service record: reject or last")
	f.StringVar(&buildTimestampPolicy, "timestamp-policy", "", "What to do with a document lacking a dateStamp: fail or warn")
	f.BoolVar(&buildClean, "clean", false, "Remove existing XML files and index.html from the output folder first")
	f.StringVar(&buildConfigFile, "config", "", "YAML config file")
	f.StringVar(&buildReportFile, "report", "", "Write a JSON run report to this file")
	f.StringVar(&buildMetricsFile, "metrics-file", "", "Write Prometheus textfile metrics to this file")
}

// loadBuildConfig layers defaults, config file, environment and flags.
func loadBuildConfig(flags *pflag.FlagSet) (*config.Config, error) {
	if err := config.LoadDotEnv(".env"); err != nil {
		return nil, err
	}

	cfg, err := config.Load(buildConfigFile)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	set := func(name string, dst *string, v string) {
		if flags.Changed(name) {
			*dst = v
		}
	}
	set("path", &cfg.Archive, buildArchive)
	set("client", &cfg.Client, buildClient)
	set("url", &cfg.BaseURL, buildURL)
	set("output-root", &cfg.OutputRoot, buildOutputRoot)
	set("temp-root", &cfg.TempRoot, buildTempRoot)
	set("record-name", &cfg.RecordName, buildRecordName)
	set("date", &cfg.RunDate, buildRunDate)
	if flags.Changed("service-policy") {
		cfg.ServicePolicy = config.ServicePolicy(strings.ToLower(buildServicePolicy))
	}
	if flags.Changed("timestamp-policy") {
		cfg.TimestampPolicy = config.TimestampPolicy(strings.ToLower(buildTimestampPolicy))
	}
	if flags.Changed("clean") {
		cfg.Clean = buildClean
	}
	return cfg, nil
}

func runBuild(cmd *cobra.Command, _ []string) (err error) {
	cfg, err := loadBuildConfig(cmd.Flags())
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	if missing := cfg.Missing(); len(missing) > 0 {
		fmt.Fprintln(cmd.ErrOrStderr(), "a mandatory option is missing")
		return fmt.Errorf("missing mandatory option(s): --%s", strings.Join(missing, ", --"))
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	runID := uuid.NewString()
	logger := slog.Default().With("run", runID)
	metrics := waf.NewMetrics()

	if buildMetricsFile != "" {
		defer func() {
			if werr := metrics.WriteTextfile(buildMetricsFile); werr != nil && err == nil {
				err = fmt.Errorf("writing metrics: %w", werr)
			}
		}()
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	result, err := waf.Run(ctx, cfg, waf.Options{
		RunID:   runID,
		Logger:  logger,
		Metrics: metrics,
	})
	if err != nil {
		if ctx.Err() == context.Canceled {
			return fmt.Errorf("interrupted; build aborted: %w", err)
		}
		return err
	}

	if buildReportFile != "" {
		if err := result.WriteReport(buildReportFile); err != nil {
			return err
		}
	}

	out := cmd.ErrOrStderr()
	fmt.Fprintf(out, "File extraction into %s completed successfully\n", result.OutputDir)
	fmt.Fprintf(out, "Wrote %d datasets, %s and %d index entries\n", len(result.Datasets), waf.ServiceFileName, len(result.Files))
	for _, d := range result.Diagnostics {
		fmt.Fprintf(out, "warning: %s\n", d.Message)
	}
	return nil
}
