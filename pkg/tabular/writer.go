package tabular

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// WriteRows writes header followed by rows. Rows sharing header are written
// as read; others are projected onto header by field name.
func WriteRows(w io.Writer, header *Header, rows []Row) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(header.Fields); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	record := make([]string, len(header.Fields))
	for _, row := range rows {
		if row.Header == header && len(row.Values) == len(header.Fields) {
			if err := cw.Write(row.Values); err != nil {
				return fmt.Errorf("failed to write CSV record: %w", err)
			}
			continue
		}
		for i, f := range header.Fields {
			record[i], _ = row.Get(f)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// SaveRows writes rows to path, creating parent directories as needed.
func SaveRows(path string, header *Header, rows []Row) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	if err := WriteRows(file, header, rows); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
