// Package waf turns a GeoNetwork batch export into a Web Accessible Folder:
// datasets renamed after their titles, the service record's coupled
// resources linked to those files by URL, dateStamps normalised to the run
// date and an index page listing the lot.
package waf

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/lehigh-university-libraries/geowaf/archive"
	"github.com/lehigh-university-libraries/geowaf/config"
	"github.com/lehigh-university-libraries/geowaf/index"
	"github.com/lehigh-university-libraries/geowaf/iso"
)

// stagedServiceName is the scratch file holding the service record until
// every dataset has been placed.
const stagedServiceName = "temp_service.xml"

// Options carries the collaborators of a build.
type Options struct {
	// RunID tags log lines and the report. Optional.
	RunID string

	// Logger defaults to slog.Default().
	Logger *slog.Logger

	// Metrics defaults to a fresh set.
	Metrics *Metrics

	// Now defaults to time.Now; it is read once per build.
	Now func() time.Time
}

// Result describes a finished build.
type Result struct {
	RunID     string
	RunDate   string
	OutputDir string

	// Datasets lists placed datasets in archive order.
	Datasets []Placement

	// Service is the identifier of the service record that was written.
	Service string

	// Resolved lists the coupled resources that were linked.
	Resolved []string

	// IDs is the identifier map built while placing datasets.
	IDs *IdentifierMap

	// Files is the final catalog listing, index page excluded.
	Files []string

	Diagnostics []Diagnostic
	Duration    time.Duration
}

// Run builds the WAF described by cfg. The catalog is assembled and stamped
// in a scratch directory and only then moved into the output folder, so a
// failed build leaves earlier output as it was. The scratch directory is
// removed on every return path. Errors are *Error values tagged with the
// failing stage.
func Run(ctx context.Context, cfg *config.Config, opts Options) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = NewMetrics()
	}
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}

	start := now()
	runDate, err := cfg.Date(start)
	if err != nil {
		return nil, err
	}

	res := &Result{
		RunID:     opts.RunID,
		RunDate:   runDate,
		OutputDir: cfg.OutputDir(),
		IDs:       NewIdentifierMap(),
	}

	scratch, err := acquireScratch(cfg.TempRoot)
	if err != nil {
		return nil, err
	}
	defer func() {
		if rerr := os.RemoveAll(scratch); rerr != nil {
			logger.Warn("failed to remove scratch directory", "dir", scratch, "error", rerr)
		}
	}()

	ar, err := archive.Open(cfg.Archive)
	if err != nil {
		return nil, newError(KindArchive, cfg.Archive, err)
	}
	defer ar.Close()

	entries := ar.Records(cfg.RecordName)
	if len(entries) == 0 {
		return nil, newError(KindArchive, ar.Path(), fmt.Errorf("no %s records found", cfg.RecordName))
	}
	logger.Info("reading archive", "archive", ar.Path(), "records", len(entries), "output", res.OutputDir)

	stage, err := beginStaging(scratch)
	if err != nil {
		return nil, err
	}
	catalog := NewCatalog(stage)
	placer := NewPlacer(catalog, res.IDs)
	stagedService := filepath.Join(scratch, stagedServiceName)

	for i, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		data, err := entry.Read()
		if err != nil {
			return nil, newError(KindArchive, entry.Name, err)
		}
		staged := filepath.Join(scratch, fmt.Sprintf("%04d-%s", i, cfg.RecordName))
		if err := os.WriteFile(staged, data, 0o644); err != nil {
			return nil, newError(KindFileSystem, entry.Name, err)
		}

		doc, err := iso.Parse(entry.Identifier(), data)
		if err != nil {
			return nil, classifyError(entry.Name, err)
		}
		metrics.Records.WithLabelValues(string(doc.Kind)).Inc()

		switch doc.Kind {
		case iso.KindService:
			if res.Service != "" {
				if cfg.ServicePolicy != config.ServiceLast {
					return nil, newError(KindClassification, entry.Name,
						fmt.Errorf("archive holds more than one service record (%s and %s)", res.Service, doc.Identifier))
				}
				logger.Warn("replacing earlier service record", "previous", res.Service, "identifier", doc.Identifier)
				res.Diagnostics = append(res.Diagnostics, Diagnostic{
					Kind:    DuplicateServiceWarning,
					Subject: doc.Identifier,
					Message: fmt.Sprintf("service record %s replaces %s", doc.Identifier, res.Service),
				})
			}
			doc.SetServiceCaption(ServiceCaption)
			if err := doc.WriteFile(stagedService, false); err != nil {
				return nil, newError(KindFileSystem, entry.Name, err)
			}
			res.Service = doc.Identifier
			logger.Debug("staged service record", "identifier", doc.Identifier, "coupled", len(doc.CouplesTo))

		case iso.KindDataset:
			placed, err := placer.Place(doc)
			if err != nil {
				return nil, err
			}
			res.Datasets = append(res.Datasets, placed)
			metrics.FilesWritten.Inc()
			logger.Debug("placed dataset", "identifier", placed.Identifier, "file", placed.File)
		}
	}

	if res.Service == "" {
		return nil, newError(KindClassification, ar.Path(), errors.New("archive has no service record"))
	}

	svc, err := iso.ReadFile(res.Service, stagedService)
	if err != nil {
		return nil, newError(KindClassification, stagedServiceName, err)
	}
	rewrite := RewriteService(svc, res.IDs, cfg.BaseURL, logger)
	res.Resolved = rewrite.Resolved
	res.Diagnostics = append(res.Diagnostics, rewrite.Diagnostics...)
	metrics.References.WithLabelValues("resolved").Add(float64(len(rewrite.Resolved)))
	metrics.References.WithLabelValues("unresolved").Add(float64(len(rewrite.Diagnostics)))

	if err := svc.WriteFile(catalog.Path(ServiceFileName), true); err != nil {
		return nil, newError(KindFileSystem, ServiceFileName, err)
	}
	metrics.FilesWritten.Inc()
	logger.Info("extraction completed", "datasets", len(res.Datasets))

	_, diags, err := StampAll(stage, runDate, cfg.TimestampPolicy, logger)
	res.Diagnostics = append(res.Diagnostics, diags...)
	if err != nil {
		metrics.diagnostics(res.Diagnostics)
		return nil, err
	}

	// Nothing in the output folder changes before this point.
	published, err := publish(stage, res.OutputDir, cfg.Clean, logger)
	if err != nil {
		metrics.diagnostics(res.Diagnostics)
		return nil, err
	}
	if !cfg.Clean {
		stale, err := unclaimed(res.OutputDir, published, logger)
		if err != nil {
			metrics.diagnostics(res.Diagnostics)
			return nil, err
		}
		res.Diagnostics = append(res.Diagnostics, stale...)
	}
	logger.Info("catalog published", "output", res.OutputDir, "files", len(published))

	files, err := index.Write(res.OutputDir, cfg.Client)
	if err != nil {
		metrics.diagnostics(res.Diagnostics)
		return nil, newError(KindIndex, index.FileName, err)
	}
	metrics.FilesWritten.Inc()
	res.Files = files

	res.Duration = now().Sub(start)
	metrics.diagnostics(res.Diagnostics)
	metrics.Duration.Set(res.Duration.Seconds())
	metrics.LastSuccess.Set(float64(now().Unix()))
	logger.Info("index written", "files", len(files), "diagnostics", len(res.Diagnostics))

	return res, nil
}

// classifyError maps a record parse failure onto its error kind.
func classifyError(name string, err error) error {
	if errors.Is(err, iso.ErrNoTitle) {
		return newError(KindNaming, name, err)
	}
	return newError(KindClassification, name, err)
}

func acquireScratch(root string) (string, error) {
	if root != "" {
		if err := os.MkdirAll(root, 0o755); err != nil {
			return "", newError(KindFileSystem, root, err)
		}
	}
	dir, err := os.MkdirTemp(root, "geowaf-")
	if err != nil {
		return "", newError(KindFileSystem, root, err)
	}
	return dir, nil
}

// RecordInfo describes one archive record without building anything.
type RecordInfo struct {
	Entry      string
	Identifier string
	Kind       iso.Kind
	Title      string
	CouplesTo  []string
	Err        error
}

// Inspect classifies every record of the archive at path. Per-record
// problems are reported in RecordInfo.Err; only archive failures are
// returned as errors.
func Inspect(path, recordName string) ([]RecordInfo, error) {
	ar, err := archive.Open(path)
	if err != nil {
		return nil, newError(KindArchive, path, err)
	}
	defer ar.Close()

	var out []RecordInfo
	for _, entry := range ar.Records(recordName) {
		info := RecordInfo{
			Entry:      entry.Name,
			Identifier: entry.Identifier(),
			Kind:       iso.KindUnknown,
		}
		data, err := entry.Read()
		if err != nil {
			return nil, newError(KindArchive, entry.Name, err)
		}
		doc, err := iso.Parse(info.Identifier, data)
		if doc != nil {
			info.Kind = doc.Kind
			info.Title = doc.Title
			info.CouplesTo = doc.CouplesTo
		}
		if err != nil {
			info.Err = classifyError(entry.Name, err)
		}
		out = append(out, info)
	}
	return out, nil
}
