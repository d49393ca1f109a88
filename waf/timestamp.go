package waf

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/lehigh-university-libraries/geowaf/config"
	"github.com/lehigh-university-libraries/geowaf/iso"
)

// StampAll sets the dateStamp of every *.xml file in dir to date. Under
// config.TimestampFail a file without a dateStamp aborts with a
// TimestampError; under config.TimestampWarn it is reported and skipped.
// It returns the files that were stamped, in name order.
func StampAll(dir, date string, policy config.TimestampPolicy, logger *slog.Logger) ([]string, []Diagnostic, error) {
	if logger == nil {
		logger = slog.Default()
	}

	paths, err := filepath.Glob(filepath.Join(dir, "*.xml"))
	if err != nil {
		return nil, nil, newError(KindFileSystem, dir, err)
	}

	var (
		stamped []string
		diags   []Diagnostic
	)
	for _, p := range paths {
		name := filepath.Base(p)
		doc, err := iso.ReadFile(name, p)
		if err != nil {
			return stamped, diags, newError(KindTimestamp, name, err)
		}

		if err := doc.Stamp(date); err != nil {
			if errors.Is(err, iso.ErrNoDateStamp) && policy == config.TimestampWarn {
				logger.Warn("document has no dateStamp", "file", name)
				diags = append(diags, Diagnostic{
					Kind:    TimestampWarning,
					Subject: name,
					Message: fmt.Sprintf("%s has no dateStamp; left unchanged", name),
				})
				continue
			}
			return stamped, diags, newError(KindTimestamp, name, err)
		}

		if err := doc.WriteFile(p, false); err != nil {
			return stamped, diags, newError(KindFileSystem, name, err)
		}
		stamped = append(stamped, name)
	}

	logger.Debug("stamped documents", "count", len(stamped), "date", date)
	return stamped, diags, nil
}
