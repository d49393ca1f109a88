// Package config holds the settings for a WAF build and loads them from the
// embedded defaults, an optional YAML file, .env files and the environment.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/lehigh-university-libraries/geowaf/helpers"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// DateLayout is the format of run dates and of every stamped dateStamp.
const DateLayout = "2006-01-02"

// EnvPrefix prefixes every environment variable read by ApplyEnv.
const EnvPrefix = "GEOWAF_"

// ServicePolicy decides what happens when an archive holds more than one
// service record.
type ServicePolicy string

const (
	// ServiceReject fails the run.
	ServiceReject ServicePolicy = "reject"
	// ServiceLast keeps the last service record seen and logs a warning.
	ServiceLast ServicePolicy = "last"
)

// TimestampPolicy decides what happens when an output document has no
// dateStamp element.
type TimestampPolicy string

const (
	// TimestampFail aborts the run.
	TimestampFail TimestampPolicy = "fail"
	// TimestampWarn records a diagnostic and leaves the file as is.
	TimestampWarn TimestampPolicy = "warn"
)

// Config is the full set of inputs to a build.
type Config struct {
	// Archive is the path of the GeoNetwork export zip.
	Archive string `yaml:"archive"`

	// Client names the WAF owner; it titles the index page and names the
	// output directory.
	Client string `yaml:"client"`

	// BaseURL is where the WAF will be served; coupled resource links are
	// built from it.
	BaseURL string `yaml:"base_url"`

	// OutputRoot is the directory the client directory is created in.
	OutputRoot string `yaml:"output_root"`

	// TempRoot is where scratch space is created. Empty means the system
	// temporary directory.
	TempRoot string `yaml:"temp_root"`

	// RecordName is the base name of record files inside the archive.
	RecordName string `yaml:"record_name"`

	ServicePolicy   ServicePolicy   `yaml:"service_policy"`
	TimestampPolicy TimestampPolicy `yaml:"timestamp_policy"`

	// Clean removes stale XML files and the index from the output directory
	// before the build.
	Clean bool `yaml:"clean"`

	// RunDate pins the date stamped into every document (YYYY-MM-DD). Empty
	// means the date the run starts.
	RunDate string `yaml:"run_date"`
}

// Default returns the embedded defaults.
func Default() *Config {
	cfg, err := parse(defaultsYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded defaults: %v", err))
	}
	return cfg
}

// Load returns the defaults overlaid with the YAML file at path. An empty
// path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}
	return cfg, nil
}

func parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}
	return &cfg, nil
}

// LoadDotEnv loads variables from the given .env files into the process
// environment. Missing files are skipped; variables already set win.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("loading %s: %w", p, err)
		}
	}
	return nil
}

// ApplyEnv overlays GEOWAF_* variables found through lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok {
			*dst = v
		}
	}
	str("ARCHIVE", &c.Archive)
	str("CLIENT", &c.Client)
	str("BASE_URL", &c.BaseURL)
	str("OUTPUT_ROOT", &c.OutputRoot)
	str("TEMP_ROOT", &c.TempRoot)
	str("RECORD_NAME", &c.RecordName)
	str("RUN_DATE", &c.RunDate)

	if v, ok := lookup(EnvPrefix + "SERVICE_POLICY"); ok {
		c.ServicePolicy = ServicePolicy(strings.ToLower(v))
	}
	if v, ok := lookup(EnvPrefix + "TIMESTAMP_POLICY"); ok {
		c.TimestampPolicy = TimestampPolicy(strings.ToLower(v))
	}
	if v, ok := lookup(EnvPrefix + "CLEAN"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sCLEAN: %w", EnvPrefix, err)
		}
		c.Clean = b
	}
	return nil
}

// Missing lists the required settings that are empty, by flag name.
func (c *Config) Missing() []string {
	var missing []string
	if c.Archive == "" {
		missing = append(missing, "path")
	}
	if c.Client == "" {
		missing = append(missing, "client")
	}
	if c.BaseURL == "" {
		missing = append(missing, "url")
	}
	return missing
}

// Validate checks that the config can drive a build.
func (c *Config) Validate() error {
	var errs []error
	if missing := c.Missing(); len(missing) > 0 {
		errs = append(errs, fmt.Errorf("missing mandatory option(s): %s", strings.Join(missing, ", ")))
	}
	if c.Client != "" && helpers.ClientDirName(c.Client) == "" {
		errs = append(errs, fmt.Errorf("client %q does not yield a usable directory name", c.Client))
	}
	if c.RecordName == "" {
		errs = append(errs, errors.New("record_name must not be empty"))
	}
	switch c.ServicePolicy {
	case ServiceReject, ServiceLast:
	default:
		errs = append(errs, fmt.Errorf("unknown service_policy %q (want %s or %s)", c.ServicePolicy, ServiceReject, ServiceLast))
	}
	switch c.TimestampPolicy {
	case TimestampFail, TimestampWarn:
	default:
		errs = append(errs, fmt.Errorf("unknown timestamp_policy %q (want %s or %s)", c.TimestampPolicy, TimestampFail, TimestampWarn))
	}
	if c.RunDate != "" {
		if _, err := time.Parse(DateLayout, c.RunDate); err != nil {
			errs = append(errs, fmt.Errorf("run_date %q is not YYYY-MM-DD", c.RunDate))
		}
	}
	return errors.Join(errs...)
}

// OutputDir is the directory the WAF is written to.
func (c *Config) OutputDir() string {
	root := c.OutputRoot
	if root == "" {
		root = "."
	}
	return filepath.Join(root, helpers.ClientDirName(c.Client))
}

// Date returns the run date: RunDate when pinned, otherwise now.
func (c *Config) Date(now time.Time) (string, error) {
	if c.RunDate == "" {
		return now.Format(DateLayout), nil
	}
	t, err := time.Parse(DateLayout, c.RunDate)
	if err != nil {
		return "", fmt.Errorf("parsing run date: %w", err)
	}
	return t.Format(DateLayout), nil
}
