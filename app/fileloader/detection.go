package fileloader

import (
	"path/filepath"
	"strings"
)

// compressionExtensions maps compression extensions to their Compression type
var compressionExtensions = map[string]Compression{
	".gz":  CompressionGzip,
	".bz2": CompressionBzip2,
	".xz":  CompressionXZ,
}

// DetectFormat determines the table format and compression of a label file.
// Compression is detected first from a trailing extension (e.g. .csv.gz) and,
// failing that, from the file's magic bytes. The format is then read from the
// remaining extension.
func DetectFormat(filePath string) (Format, Compression) {
	if filePath == "" {
		return FormatUnknown, CompressionNone
	}

	lower := strings.ToLower(filePath)

	compression := CompressionNone
	inner := lower
	for ext, c := range compressionExtensions {
		if strings.HasSuffix(lower, ext) {
			compression = c
			inner = strings.TrimSuffix(lower, ext)
			break
		}
	}

	if compression == CompressionNone {
		if magic, err := DetectCompressionByMagic(filePath); err == nil && magic != CompressionNone {
			// Compressed without a compression extension. The inner format
			// cannot be read from the path; assume CSV, the common case.
			return FormatCSV, magic
		}
	}

	return formatFromPath(inner), compression
}

// formatFromPath determines the table format from a path that has already had
// any compression extension stripped.
func formatFromPath(path string) Format {
	switch {
	case strings.HasSuffix(path, ".csv"):
		return FormatCSV
	case strings.HasSuffix(path, ".xlsx"):
		return FormatXLSX
	default:
		return FormatUnknown
	}
}

// SplitExtensions splits a label file path into its stem, format extension and
// compression extension. Either extension may be empty.
// e.g. "dir/run1_Fixed.csv.gz" -> ("dir/run1_Fixed", ".csv", ".gz")
func SplitExtensions(filePath string) (stem, formatExt, compExt string) {
	lower := strings.ToLower(filePath)
	rest := filePath
	for ext := range compressionExtensions {
		if strings.HasSuffix(lower, ext) {
			compExt = rest[len(rest)-len(ext):]
			rest = rest[:len(rest)-len(ext)]
			break
		}
	}
	formatExt = filepath.Ext(rest)
	stem = strings.TrimSuffix(rest, formatExt)
	return stem, formatExt, compExt
}
