package waf

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/lehigh-university-libraries/geowaf/index"
)

// stageDirName is the catalog built inside scratch before it is published.
const stageDirName = "catalog"

// beginStaging creates the directory a build writes its catalog into.
func beginStaging(scratch string) (string, error) {
	stage := filepath.Join(scratch, stageDirName)
	if err := os.Mkdir(stage, 0o755); err != nil {
		return "", newError(KindFileSystem, stage, err)
	}
	return stage, nil
}

// publish moves every file of stage into dir, creating dir if needed. With
// clean set, the *.xml files and index page already in dir are removed first.
// It returns the published names in sorted order.
func publish(stage, dir string, clean bool, logger *slog.Logger) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, newError(KindFileSystem, dir, err)
	}
	if clean {
		if err := removeCatalog(dir); err != nil {
			return nil, err
		}
		logger.Debug("cleaned output directory", "dir", dir)
	}

	entries, err := os.ReadDir(stage)
	if err != nil {
		return nil, newError(KindFileSystem, stage, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if err := moveFile(filepath.Join(stage, e.Name()), filepath.Join(dir, e.Name())); err != nil {
			return names, newError(KindFileSystem, e.Name(), err)
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	logger.Debug("published catalog", "dir", dir, "files", len(names))
	return names, nil
}

func removeCatalog(dir string) error {
	stale, err := filepath.Glob(filepath.Join(dir, "*.xml"))
	if err != nil {
		return newError(KindFileSystem, dir, err)
	}
	stale = append(stale, filepath.Join(dir, index.FileName))
	for _, p := range stale {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return newError(KindFileSystem, p, err)
		}
	}
	return nil
}

// unclaimed reports the *.xml files in dir that this build did not publish.
// They are left as they are but still appear in the index page.
func unclaimed(dir string, published []string, logger *slog.Logger) ([]Diagnostic, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.xml"))
	if err != nil {
		return nil, newError(KindFileSystem, dir, err)
	}
	ours := make(map[string]bool, len(published))
	for _, name := range published {
		ours[name] = true
	}

	var diags []Diagnostic
	for _, p := range paths {
		name := filepath.Base(p)
		if ours[name] {
			continue
		}
		logger.Warn("output folder holds a file this build did not write", "file", name)
		diags = append(diags, Diagnostic{
			Kind:    StaleFileWarning,
			Subject: name,
			Message: fmt.Sprintf("%s is not from this archive; rerun with --clean to remove it", name),
		})
	}
	return diags, nil
}

// moveFile renames src to dst, copying when the two sit on different
// filesystems.
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
