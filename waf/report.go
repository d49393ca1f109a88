package waf

import (
	"fmt"
	"os"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// Report converts the result into a protobuf Struct for JSON output.
func (r *Result) Report() (*structpb.Struct, error) {
	datasets := make([]any, 0, len(r.Datasets))
	for _, d := range r.Datasets {
		datasets = append(datasets, map[string]any{
			"identifier": d.Identifier,
			"title":      d.Title,
			"file":       d.File,
		})
	}

	ids := map[string]any{}
	if r.IDs != nil {
		for _, id := range r.IDs.Identifiers() {
			stem, _ := r.IDs.Lookup(id)
			ids[id] = stem + ".xml"
		}
	}

	files := make([]any, 0, len(r.Files))
	for _, f := range r.Files {
		files = append(files, f)
	}

	resolved := make([]any, 0, len(r.Resolved))
	for _, id := range r.Resolved {
		resolved = append(resolved, id)
	}

	diags := make([]any, 0, len(r.Diagnostics))
	for _, d := range r.Diagnostics {
		diags = append(diags, map[string]any{
			"kind":    string(d.Kind),
			"subject": d.Subject,
			"message": d.Message,
		})
	}

	s, err := structpb.NewStruct(map[string]any{
		"run_id":           r.RunID,
		"run_date":         r.RunDate,
		"output_dir":       r.OutputDir,
		"service":          r.Service,
		"datasets":         datasets,
		"identifier_map":   ids,
		"resolved":         resolved,
		"files":            files,
		"diagnostics":      diags,
		"duration_seconds": r.Duration.Seconds(),
	})
	if err != nil {
		return nil, fmt.Errorf("building report: %w", err)
	}
	return s, nil
}

// MarshalReport renders the report as indented JSON.
func (r *Result) MarshalReport() ([]byte, error) {
	s, err := r.Report()
	if err != nil {
		return nil, err
	}
	data, err := protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encoding report: %w", err)
	}
	return data, nil
}

// WriteReport writes the JSON report to path.
func (r *Result) WriteReport(path string) error {
	data, err := r.MarshalReport()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}
