package dataset

import (
	"bytes"
	"compress/gzip"
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestWriteCSVHeaderAndRows(t *testing.T) {
	table, err := New(
		Column[int]{Name: "party_A", Values: []int{0, 1, 1}},
		Column[int]{Name: "party_B", Values: []int{1, 0, 1}},
	)
	if err != nil {
		t.Fatalf("new table: %v", err)
	}
	var buf bytes.Buffer
	if err := WriteCSV(&buf, table); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	want := "party_A,party_B\n0,1\n1,0\n1,1\n"
	if buf.String() != want {
		t.Fatalf("csv = %q, want %q", buf.String(), want)
	}
}

func TestWriteCSVFloatsRoundTrip(t *testing.T) {
	values := []float64{0, math.Pi, 255.0 / 256.0 * 2 * math.Pi}
	table, err := New(Column[float64]{Name: "party_A", Values: values})
	if err != nil {
		t.Fatalf("new table: %v", err)
	}
	var buf bytes.Buffer
	if err := WriteCSV(&buf, table); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	back, err := ReadFloatCSV(&buf)
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	got, _ := back.Column("party_A")
	for i := range values {
		if got[i] != values[i] {
			t.Fatalf("value %d = %v, want %v", i, got[i], values[i])
		}
	}
}

func TestWriteCSVRejectsZeroTable(t *testing.T) {
	if err := WriteCSV(io.Discard, Table[int]{}); err == nil {
		t.Fatal("expected error for empty table")
	}
}

func TestWriteFileReplacesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "threat_bits.csv")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("stale contents\n"), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	table, err := New(Column[int]{Name: "party_A", Values: []int{1, 0}})
	if err != nil {
		t.Fatalf("new table: %v", err)
	}
	if err := WriteFile(path, table); err != nil {
		t.Fatalf("write file: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	if string(data) != "party_A\n1\n0\n" {
		t.Fatalf("file = %q", data)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected only the output file, found %d entries", len(entries))
	}
}

func TestWriteFileCreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "qrng_angles.csv")
	table, err := New(Column[float64]{Name: "party_A", Values: []float64{0.5}})
	if err != nil {
		t.Fatalf("new table: %v", err)
	}
	if err := WriteFile(path, table); err != nil {
		t.Fatalf("write file: %v", err)
	}
	back, err := ReadFile(path, ReadFloatCSV)
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	if back.Rows() != 1 || back.Names()[0] != "party_A" {
		t.Fatalf("unexpected table %v rows=%d", back.Names(), back.Rows())
	}
}

func TestWriteFileGzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "threat_bits.csv.gz")
	table, err := New(Column[int]{Name: "party_A", Values: []int{1, 1, 0}})
	if err != nil {
		t.Fatalf("new table: %v", err)
	}
	if err := WriteFile(path, table); err != nil {
		t.Fatalf("write file: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	zr, err := gzip.NewReader(f)
	if err != nil {
		t.Fatalf("expected gzip stream: %v", err)
	}
	plain, err := io.ReadAll(zr)
	if err != nil {
		t.Fatalf("decompress: %v", err)
	}
	if string(plain) != "party_A\n1\n1\n0\n" {
		t.Fatalf("decompressed = %q", plain)
	}
	if zr.Name != "threat_bits.csv" {
		t.Fatalf("gzip name = %q", zr.Name)
	}

	back, err := ReadFile(path, ReadIntCSV)
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	got, _ := back.Column("party_A")
	if len(got) != 3 || got[2] != 0 {
		t.Fatalf("round trip = %v", got)
	}
}

func TestWriteFileRequiresPath(t *testing.T) {
	table, err := New(Column[int]{Name: "party_A", Values: []int{1}})
	if err != nil {
		t.Fatalf("new table: %v", err)
	}
	if err := WriteFile(" ", table); err == nil {
		t.Fatal("expected error for blank path")
	}
}

func TestReadIntCSVRejectsBadCell(t *testing.T) {
	if _, err := ReadIntCSV(bytes.NewBufferString("party_A\nx\n")); err == nil {
		t.Fatal("expected parse error")
	}
}
