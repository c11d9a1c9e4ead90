package exporter

import (
	"fmt"
	"io"

	"github.com/parquet-go/parquet-go"

	"sprintdash/pkg/contracts/domain"
)

// WriteParquet writes the long-form records with the schema inferred from
// domain.LongRecord's parquet tags.
func WriteParquet(w io.Writer, records []domain.LongRecord) error {
	writer := parquet.NewGenericWriter[domain.LongRecord](w)

	if _, err := writer.Write(records); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write parquet rows: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}
