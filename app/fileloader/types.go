package fileloader

// Format identifies the tabular container of a label file.
type Format int

const (
	FormatUnknown Format = iota
	FormatCSV
	FormatXLSX
)

// String returns the string representation of Format
func (f Format) String() string {
	switch f {
	case FormatCSV:
		return "csv"
	case FormatXLSX:
		return "xlsx"
	default:
		return "unknown"
	}
}
