// Package export persists the final annotation table in its two on-disk
// representations: the corrected table in the input's own schema, and a
// per-label channel container in JSON.
package export

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/ohler55/ojg/oj"

	"labeledit/app/fileloader"
	"labeledit/app/store"
)

// correctedSuffix marks corrected table files. An input that already carries
// it does not accumulate another one.
const correctedSuffix = "_Fixed"

// secondaryExt is the extension of the per-label channel container.
const secondaryExt = ".json"

// Exporter writes both artifacts from the final in-memory store state.
type Exporter struct {
	logger *slog.Logger
}

// New creates an exporter logging through logger.
func New(logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{logger: logger}
}

// PrimaryPath derives the corrected table path from the input path: same
// directory, base name without any existing corrected suffix, the suffix
// appended, same format and compression extensions.
func PrimaryPath(labelPath string) string {
	stem, formatExt, compExt := fileloader.SplitExtensions(labelPath)
	dir := filepath.Dir(stem)
	base := strings.Split(filepath.Base(stem), correctedSuffix)[0]
	return filepath.Join(dir, base+correctedSuffix+formatExt+compExt)
}

// SecondaryPath derives the channel container path from the original input
// path: same directory, same base name, container extension.
func SecondaryPath(labelPath string) string {
	stem, _, _ := fileloader.SplitExtensions(labelPath)
	return stem + secondaryExt
}

// Run writes both artifacts. The writes are independent: a failure in one
// does not stop the other, and both errors are reported. Nothing is written
// when the session made no edits.
func (e *Exporter) Run(st *store.Store) error {
	if !st.Dirty() {
		e.logger.Info("no edits made, skipping export")
		return nil
	}

	var errs []error
	if path, err := e.WritePrimary(st); err != nil {
		errs = append(errs, fmt.Errorf("primary export: %w", err))
	} else {
		e.logger.Info("saved corrected label file", "path", path)
	}
	if path, err := e.WriteSecondary(st); err != nil {
		errs = append(errs, fmt.Errorf("secondary export: %w", err))
	} else {
		e.logger.Info("saved channel container file", "path", path)
	}
	return errors.Join(errs...)
}

// WritePrimary serializes the full table verbatim to the corrected path,
// preserving the input's format and, where writable, its compression.
func (e *Exporter) WritePrimary(st *store.Store) (string, error) {
	path := PrimaryPath(st.Path())
	rows := st.ExportPrimary()

	compression := st.Compression()
	if compression != fileloader.CompressionNone && st.Format() == fileloader.FormatXLSX {
		// xlsx is already a zip container; recompressing buys nothing
		compression = fileloader.CompressionNone
	}
	if !compression.Writable() {
		e.logger.Warn("input compression cannot be written, saving uncompressed",
			"compression", compression.String())
		_, _, compExt := fileloader.SplitExtensions(path)
		path = strings.TrimSuffix(path, compExt)
		compression = fileloader.CompressionNone
	}

	switch st.Format() {
	case fileloader.FormatXLSX:
		if err := fileloader.WriteXLSXRows(path, rows); err != nil {
			return "", err
		}
	default:
		f, err := os.Create(path)
		if err != nil {
			return "", err
		}
		defer f.Close()

		w, err := fileloader.CompressingWriter(f, compression)
		if err != nil {
			return "", err
		}
		if err := fileloader.WriteCSVRows(w, rows); err != nil {
			w.Close()
			return "", err
		}
		if err := w.Close(); err != nil {
			return "", err
		}
	}
	return path, nil
}

// WriteSecondary serializes the per-label channel container next to the
// original input file. Missing cells become JSON nulls.
func (e *Exporter) WriteSecondary(st *store.Store) (string, error) {
	path := SecondaryPath(st.Path())

	doc := make(map[string]map[string][]any, len(st.Labels()))
	for label, series := range st.ExportSecondary() {
		doc[label] = map[string][]any{
			"x":          jsonSequence(series.X),
			"y":          jsonSequence(series.Y),
			"likelihood": jsonSequence(series.Likelihood),
		}
	}

	data, err := oj.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("failed to marshal channel container: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// jsonSequence converts a channel to JSON values, mapping NaN to null since
// JSON has no NaN literal.
func jsonSequence(values []float64) []any {
	out := make([]any, len(values))
	for i, v := range values {
		if math.IsNaN(v) {
			out[i] = nil
		} else {
			out[i] = v
		}
	}
	return out
}

// ConvertSecondary loads a label table and writes its channel container,
// regardless of edit state. Used by the batch converter.
func ConvertSecondary(labelPath string, logger *slog.Logger) (string, error) {
	st, err := store.Load(labelPath, logger)
	if err != nil {
		return "", err
	}
	return New(logger).WriteSecondary(st)
}
