package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/renameio/v2"
	"github.com/klauspost/compress/gzip"
)

// WriteCSV writes t as CSV: a header of column names, then one record per
// sample. No index column is written.
func WriteCSV[T Value](w io.Writer, t Table[T]) error {
	if t.Width() == 0 {
		return ErrNoColumns
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Names()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	record := make([]string, t.Width())
	for i := 0; i < t.rows; i++ {
		for c, col := range t.columns {
			record[c] = formatValue(col.Values[i])
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile serializes t to path, replacing any existing file atomically: the
// table is written to a temporary file in the target directory and renamed
// over path only once every row is on disk. A path ending in ".gz" is gzip
// compressed.
func WriteFile[T Value](path string, t Table[T]) (err error) {
	if strings.TrimSpace(path) == "" {
		return errors.New("dataset: output path is required")
	}
	if t.Width() == 0 {
		return ErrNoColumns
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	pending, err := renameio.NewPendingFile(path, renameio.WithPermissions(0o644))
	if err != nil {
		return fmt.Errorf("create pending file: %w", err)
	}
	defer func() {
		if cleanupErr := pending.Cleanup(); cleanupErr != nil && err == nil {
			err = fmt.Errorf("clean up pending file: %w", cleanupErr)
		}
	}()

	if strings.HasSuffix(path, ".gz") {
		zw := gzip.NewWriter(pending)
		zw.Name = strings.TrimSuffix(filepath.Base(path), ".gz")
		if err := WriteCSV(zw, t); err != nil {
			return err
		}
		if err := zw.Close(); err != nil {
			return fmt.Errorf("close gzip stream: %w", err)
		}
	} else if err := WriteCSV(pending, t); err != nil {
		return err
	}

	if err := pending.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

// ReadFloatCSV parses a table written by WriteCSV with float cells.
func ReadFloatCSV(r io.Reader) (Table[float64], error) {
	return readCSV(r, func(s string) (float64, error) {
		return strconv.ParseFloat(s, 64)
	})
}

// ReadIntCSV parses a table written by WriteCSV with integer cells.
func ReadIntCSV(r io.Reader) (Table[int], error) {
	return readCSV(r, strconv.Atoi)
}

// ReadFile opens path, transparently decompressing ".gz" files, and parses it
// with read.
func ReadFile[T Value](path string, read func(io.Reader) (Table[T], error)) (Table[T], error) {
	f, err := os.Open(path)
	if err != nil {
		return Table[T]{}, err
	}
	defer f.Close()

	var src io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		zr, err := gzip.NewReader(f)
		if err != nil {
			return Table[T]{}, fmt.Errorf("open gzip stream: %w", err)
		}
		defer zr.Close()
		src = zr
	}
	return read(src)
}

func readCSV[T Value](r io.Reader, parse func(string) (T, error)) (Table[T], error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return Table[T]{}, fmt.Errorf("read csv: %w", err)
	}
	if len(records) == 0 {
		return Table[T]{}, ErrNoColumns
	}
	header := records[0]
	columns := make([]Column[T], len(header))
	for c, name := range header {
		columns[c] = Column[T]{Name: name, Values: make([]T, 0, len(records)-1)}
	}
	for i, record := range records[1:] {
		for c, cell := range record {
			v, err := parse(cell)
			if err != nil {
				return Table[T]{}, fmt.Errorf("row %d column %s: %w", i, header[c], err)
			}
			columns[c].Values = append(columns[c].Values, v)
		}
	}
	return New(columns...)
}

func formatValue[T Value](v T) string {
	switch x := any(v).(type) {
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case int:
		return strconv.Itoa(x)
	default:
		return fmt.Sprint(x)
	}
}
