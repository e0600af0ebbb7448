package fileloader

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
)

// CSV reading and writing for label tables held in memory. Compressed files
// are decompressed up front (see ReadAll), so everything here works on bytes.

// ReadCSVRows parses CSV data in memory and returns all rows.
func ReadCSVRows(data []byte) ([][]string, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("data is empty")
	}

	reader := csv.NewReader(bytes.NewReader(data))
	// Allow variable number of fields per record to handle corrupted files
	reader.FieldsPerRecord = -1

	var rows [][]string
	for {
		rec, err := reader.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, err
		}
		rows = append(rows, rec)
	}
	return rows, nil
}

// WriteCSVRows encodes rows as CSV to w.
func WriteCSVRows(w io.Writer, rows [][]string) error {
	writer := csv.NewWriter(w)
	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
