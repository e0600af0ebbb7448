package fileloader

import (
	"fmt"
)

// LoadRows reads a label table from disk, handling format and compression
// detection, and returns every row as strings along with what was detected.
func LoadRows(filePath string) ([][]string, Format, Compression, error) {
	if filePath == "" {
		return nil, FormatUnknown, CompressionNone, fmt.Errorf("file path is empty")
	}

	format, compression := DetectFormat(filePath)
	if format == FormatUnknown {
		return nil, format, compression, fmt.Errorf("unsupported label file format: %s", filePath)
	}

	data, err := ReadAll(filePath, compression)
	if err != nil {
		return nil, format, compression, fmt.Errorf("failed to read %s: %w", filePath, err)
	}

	var rows [][]string
	switch format {
	case FormatCSV:
		rows, err = ReadCSVRows(data)
	case FormatXLSX:
		rows, err = ReadXLSXRows(data)
	}
	if err != nil {
		return nil, format, compression, fmt.Errorf("failed to parse %s: %w", filePath, err)
	}
	return rows, format, compression, nil
}
