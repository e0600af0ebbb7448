// Package store holds the in-memory annotation table for an editing session:
// per-frame x/y/likelihood channels for a fixed set of labels, loaded once
// from a tabular file and mutated in place as coordinates are corrected.
package store

import (
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"labeledit/app/fileloader"
)

const (
	headerRows = 3 // scorer / bodyparts / coords

	channelX          = "x"
	channelY          = "y"
	channelLikelihood = "likelihood"
)

// ChannelSeries groups the three per-frame channels of one label, each
// frame-ordered and of identical length.
type ChannelSeries struct {
	X          []float64 `json:"x"`
	Y          []float64 `json:"y"`
	Likelihood []float64 `json:"likelihood"`
}

// Store is the annotation table. The row count and label set are fixed at
// load time; only x/y coordinate pairs are ever rewritten. Raw cells are kept
// alongside the parsed values so the primary export reproduces the input
// schema verbatim except for edited coordinates.
type Store struct {
	path        string
	format      fileloader.Format
	compression fileloader.Compression

	subject string
	labels  []string
	frames  int

	header [][]string // the three header rows, as loaded
	cells  [][]string // data rows including the index column, as loaded

	// Parsed channels, indexed [label][frame]. Missing cells are NaN.
	x, y, lik [][]float64

	// Column index of each channel per label within a data row; -1 if the
	// column is absent from the table.
	colX, colY, colL []int

	dirty  bool
	logger *slog.Logger
}

// Load reads a label table from disk and builds the store. The table must
// carry the three-row header (scorer / bodyparts / coords) above the data
// rows; the subject name is read from the first column triple and the label
// order is first-appearance order in the header.
func Load(filePath string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	rows, format, compression, err := fileloader.LoadRows(filePath)
	if err != nil {
		return nil, err
	}
	if len(rows) < headerRows {
		return nil, fmt.Errorf("label table %s has no header rows", filePath)
	}

	s := &Store{
		path:        filePath,
		format:      format,
		compression: compression,
		header:      rows[:headerRows],
		cells:       rows[headerRows:],
		frames:      len(rows) - headerRows,
		logger:      logger,
	}

	if err := s.indexColumns(); err != nil {
		return nil, fmt.Errorf("label table %s: %w", filePath, err)
	}
	s.parseChannels()

	logger.Info("loaded label table",
		"path", filePath,
		"format", format.String(),
		"frames", s.frames,
		"labels", len(s.labels),
		"subject", s.subject)
	return s, nil
}

// indexColumns walks the header triples and records, per label, which data
// column holds each channel.
func (s *Store) indexColumns() error {
	scorer, parts, coords := s.header[0], s.header[1], s.header[2]
	if len(parts) < 2 || len(coords) < 2 {
		return fmt.Errorf("header rows have no label columns")
	}
	if len(scorer) > 1 {
		s.subject = scorer[1]
	}

	seen := make(map[string]int)
	for j := 1; j < len(parts) && j < len(coords); j++ {
		label := parts[j]
		if label == "" {
			continue
		}
		idx, ok := seen[label]
		if !ok {
			idx = len(s.labels)
			seen[label] = idx
			s.labels = append(s.labels, label)
			s.colX = append(s.colX, -1)
			s.colY = append(s.colY, -1)
			s.colL = append(s.colL, -1)
		}
		switch strings.ToLower(coords[j]) {
		case channelX:
			s.colX[idx] = j
		case channelY:
			s.colY[idx] = j
		case channelLikelihood:
			s.colL[idx] = j
		default:
			s.logger.Warn("ignoring unknown channel column", "label", label, "channel", coords[j])
		}
	}
	if len(s.labels) == 0 {
		return fmt.Errorf("no labels found in header")
	}
	// Edits write x and y together; a label lacking either column could
	// accept edits that never reach the primary export.
	for i, label := range s.labels {
		if s.colX[i] < 0 || s.colY[i] < 0 {
			return fmt.Errorf("label %s is missing an x or y column", label)
		}
	}
	return nil
}

// parseChannels fills the float views of the table. A cell that is empty or
// unparsable is missing (NaN); a cell where only one of x/y parsed is
// normalized so both are missing.
func (s *Store) parseChannels() {
	nan := math.NaN()
	s.x = make([][]float64, len(s.labels))
	s.y = make([][]float64, len(s.labels))
	s.lik = make([][]float64, len(s.labels))

	for li := range s.labels {
		s.x[li] = make([]float64, s.frames)
		s.y[li] = make([]float64, s.frames)
		s.lik[li] = make([]float64, s.frames)

		for fi := 0; fi < s.frames; fi++ {
			s.x[li][fi] = parseCell(s.cells[fi], s.colX[li])
			s.y[li][fi] = parseCell(s.cells[fi], s.colY[li])
			s.lik[li][fi] = parseCell(s.cells[fi], s.colL[li])

			if math.IsNaN(s.x[li][fi]) != math.IsNaN(s.y[li][fi]) {
				s.logger.Warn("half-missing coordinate normalized to missing",
					"label", s.labels[li], "frame", fi)
				s.x[li][fi] = nan
				s.y[li][fi] = nan
				s.setCell(fi, s.colX[li], "")
				s.setCell(fi, s.colY[li], "")
			}
		}
	}
}

func parseCell(row []string, col int) float64 {
	if col < 0 || col >= len(row) {
		return math.NaN()
	}
	v := strings.TrimSpace(row[col])
	if v == "" || strings.EqualFold(v, "nan") {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

// setCell writes a raw cell, growing the row if the column was ragged.
func (s *Store) setCell(frame, col int, value string) {
	if col < 0 {
		return
	}
	row := s.cells[frame]
	for len(row) <= col {
		row = append(row, "")
	}
	row[col] = value
	s.cells[frame] = row
}

// Path returns the file the table was loaded from.
func (s *Store) Path() string { return s.path }

// Format returns the detected table format.
func (s *Store) Format() fileloader.Format { return s.format }

// Compression returns the detected compression of the loaded file.
func (s *Store) Compression() fileloader.Compression { return s.compression }

// Subject returns the subject name shared by every column triple.
func (s *Store) Subject() string { return s.subject }

// Labels returns the label names in table order.
func (s *Store) Labels() []string { return s.labels }

// FrameCount returns the number of data rows.
func (s *Store) FrameCount() int { return s.frames }

// Dirty reports whether any coordinate has been rewritten since load.
func (s *Store) Dirty() bool { return s.dirty }

// Coordinate returns the stored pair for (frame, label), or ok=false when the
// cell is missing or the indices fall outside the table.
func (s *Store) Coordinate(frame, label int) (x, y float64, ok bool) {
	if !s.inRange(frame, label) {
		return 0, 0, false
	}
	x, y = s.x[label][frame], s.y[label][frame]
	if math.IsNaN(x) || math.IsNaN(y) {
		return 0, 0, false
	}
	return x, y, true
}

// Likelihood returns the stored likelihood for (frame, label); NaN when
// missing or out of range.
func (s *Store) Likelihood(frame, label int) float64 {
	if !s.inRange(frame, label) {
		return math.NaN()
	}
	return s.lik[label][frame]
}

// SetCoordinate overwrites both coordinate channels of (frame, label) and
// marks the table dirty. Values are unconstrained; the caller decides what is
// sane. Out-of-range indices are ignored.
func (s *Store) SetCoordinate(frame, label int, x, y float64) {
	if !s.inRange(frame, label) {
		return
	}
	s.x[label][frame] = x
	s.y[label][frame] = y
	s.setCell(frame, s.colX[label], formatCoord(x))
	s.setCell(frame, s.colY[label], formatCoord(y))
	s.dirty = true
}

func (s *Store) inRange(frame, label int) bool {
	return frame >= 0 && frame < s.frames && label >= 0 && label < len(s.labels)
}

func formatCoord(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ExportPrimary returns the full table, header rows first, in the same
// row/column schema it was loaded with.
func (s *Store) ExportPrimary() [][]string {
	rows := make([][]string, 0, headerRows+s.frames)
	rows = append(rows, s.header...)
	rows = append(rows, s.cells...)
	return rows
}

// ExportSecondary reshapes the table into per-label channel sequences, each
// frame-ordered and of length FrameCount. Missing cells stay NaN.
func (s *Store) ExportSecondary() map[string]ChannelSeries {
	out := make(map[string]ChannelSeries, len(s.labels))
	for li, label := range s.labels {
		series := ChannelSeries{
			X:          make([]float64, s.frames),
			Y:          make([]float64, s.frames),
			Likelihood: make([]float64, s.frames),
		}
		copy(series.X, s.x[li])
		copy(series.Y, s.y[li])
		copy(series.Likelihood, s.lik[li])
		out[label] = series
	}
	return out
}
