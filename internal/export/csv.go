package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"reserveScope/internal/model"
)

// CSVWriter writes one line per reserve snapshot. The header is written before
// the first row.
type CSVWriter struct {
	mu          sync.Mutex
	out         *csv.Writer
	closer      io.Closer
	columns     []Column
	format      Format
	wroteHeader bool
}

func NewCSVWriter(w io.Writer, columns []Column, format Format) *CSVWriter {
	return &CSVWriter{out: csv.NewWriter(w), columns: columns, format: format}
}

// CreateCSVFile truncates or creates path, making parent directories as needed.
func CreateCSVFile(path string, columns []Column, format Format) (*CSVWriter, error) {
	if err := makeParent(path); err != nil {
		return nil, err
	}
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create csv file: %w", err)
	}
	writer := NewCSVWriter(file, columns, format)
	writer.closer = file
	return writer, nil
}

// AppendCSVFile opens path for appending rows. The header is written only when the
// file is empty; an existing header must match columns.
func AppendCSVFile(path string, columns []Column, format Format) (*CSVWriter, error) {
	if err := makeParent(path); err != nil {
		return nil, err
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open csv file: %w", err)
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("stat csv file: %w", err)
	}

	writer := NewCSVWriter(file, columns, format)
	writer.closer = file
	if info.Size() == 0 {
		return writer, nil
	}

	header, err := csv.NewReader(file).Read()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	if !slices.Equal(header, Header(columns)) {
		file.Close()
		return nil, fmt.Errorf("csv file %s has a different column layout", path)
	}
	writer.wroteHeader = true
	return writer, nil
}

func makeParent(path string) error {
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	return nil
}

// PutSnapshots writes and flushes a batch of rows.
func (w *CSVWriter) PutSnapshots(_ context.Context, snapshots []model.ReserveSnapshot) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.wroteHeader {
		if err := w.out.Write(Header(w.columns)); err != nil {
			return fmt.Errorf("write csv header: %w", err)
		}
		w.wroteHeader = true
	}
	for _, snapshot := range snapshots {
		if err := w.out.Write(Row(w.columns, w.format, snapshot)); err != nil {
			return fmt.Errorf("write csv row %s: %w", snapshot.Info.Asset.Address, err)
		}
	}
	w.out.Flush()
	if err := w.out.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// Close flushes pending rows and closes the file, if the writer owns one.
func (w *CSVWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.out.Flush()
	err := w.out.Error()
	if w.closer != nil {
		if closeErr := w.closer.Close(); err == nil {
			err = closeErr
		}
		w.closer = nil
	}
	return err
}

// Row renders a snapshot in column order.
func Row(columns []Column, format Format, snapshot model.ReserveSnapshot) []string {
	row := make([]string, len(columns))
	for i, c := range columns {
		row[i] = c.Value(snapshot, format)
	}
	return row
}
