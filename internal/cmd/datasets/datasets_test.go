package datasets

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/louisbranch/qdatasets/internal/assembler"
	"github.com/louisbranch/qdatasets/internal/dataset"
)

func TestParseConfigSharesCounts(t *testing.T) {
	fs := flag.NewFlagSet("datasets", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{"-parties", "3", "-samples", "50", "-seed", "9", "-threats-output", "out/t.csv"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Angles.Parties != 3 || cfg.Threats.Parties != 3 {
		t.Fatalf("parties = %d/%d, want 3/3", cfg.Angles.Parties, cfg.Threats.Parties)
	}
	if cfg.Angles.Samples != 50 || cfg.Threats.Samples != 50 {
		t.Fatalf("samples = %d/%d, want 50/50", cfg.Angles.Samples, cfg.Threats.Samples)
	}
	if cfg.Threats.Seed != 9 {
		t.Fatalf("seed = %d, want 9", cfg.Threats.Seed)
	}
	if cfg.Angles.OutputPath != "data/qrng_angles.csv" || cfg.Threats.OutputPath != "out/t.csv" {
		t.Fatalf("outputs = %q/%q", cfg.Angles.OutputPath, cfg.Threats.OutputPath)
	}
}

func TestParseConfigValidatesNested(t *testing.T) {
	fs := flag.NewFlagSet("datasets", flag.ContinueOnError)
	_, err := ParseConfig(fs, []string{"-parties", "30"})
	if err == nil || !strings.Contains(err.Error(), "Parties") {
		t.Fatalf("error = %v, want Parties validation failure", err)
	}
}

func qrngHandler(fail bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if fail {
			fmt.Fprint(w, `{"success":false,"message":"unavailable"}`)
			return
		}
		length, _ := strconv.Atoi(r.URL.Query().Get("length"))
		values := make([]string, length)
		for i := range values {
			values[i] = strconv.Itoa(i % 256)
		}
		fmt.Fprintf(w, `{"type":"uint8","length":%d,"data":[%s],"success":true}`, length, strings.Join(values, ","))
	}
}

func testConfig(t *testing.T, url string) Config {
	t.Helper()
	dir := t.TempDir()
	var cfg Config
	cfg.Angles.Parties = 2
	cfg.Angles.Samples = 16
	cfg.Angles.Retries = 2
	cfg.Angles.ServiceURL = url
	cfg.Angles.OutputPath = filepath.Join(dir, "qrng_angles.csv")
	cfg.Threats.Parties = 2
	cfg.Threats.Samples = 16
	cfg.Threats.Seed = 5
	cfg.Threats.OutputPath = filepath.Join(dir, "threat_bits.csv")
	cfg.MetricsTextfile = filepath.Join(dir, "qdatasets.prom")
	return cfg
}

func TestRunWritesBothTables(t *testing.T) {
	t.Setenv("QDATASETS_OTEL_ENDPOINT", "")
	srv := httptest.NewServer(qrngHandler(false))
	t.Cleanup(srv.Close)
	cfg := testConfig(t, srv.URL)
	var out bytes.Buffer

	if err := Run(context.Background(), cfg, &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	angles, err := dataset.ReadFile(cfg.Angles.OutputPath, dataset.ReadFloatCSV)
	if err != nil {
		t.Fatalf("read angles: %v", err)
	}
	threats, err := dataset.ReadFile(cfg.Threats.OutputPath, dataset.ReadIntCSV)
	if err != nil {
		t.Fatalf("read threats: %v", err)
	}
	if angles.Rows() != 16 || threats.Rows() != 16 {
		t.Fatalf("rows = %d/%d, want 16/16", angles.Rows(), threats.Rows())
	}

	data, err := os.ReadFile(cfg.MetricsTextfile)
	if err != nil {
		t.Fatalf("read metrics: %v", err)
	}
	for _, job := range []string{"angles", "threats"} {
		want := `qdatasets_job_rows_written{job="` + job + `"} 16`
		if !strings.Contains(string(data), want) {
			t.Fatalf("metrics missing %q:\n%s", want, data)
		}
	}
	for _, want := range []string{"QRNG angles saved to", "Threat bits saved to"} {
		if !strings.Contains(out.String(), want) {
			t.Fatalf("output missing %q:\n%s", want, out.String())
		}
	}
}

func TestRunAngleFailureKeepsThreats(t *testing.T) {
	t.Setenv("QDATASETS_OTEL_ENDPOINT", "")
	srv := httptest.NewServer(qrngHandler(true))
	t.Cleanup(srv.Close)
	cfg := testConfig(t, srv.URL)

	err := Run(context.Background(), cfg, nil)
	var acqErr *assembler.AcquisitionError
	if !errors.As(err, &acqErr) {
		t.Fatalf("error = %v, want acquisition error", err)
	}
	if _, statErr := os.Stat(cfg.Angles.OutputPath); !os.IsNotExist(statErr) {
		t.Fatalf("expected no angle file, stat err = %v", statErr)
	}
	if _, statErr := os.Stat(cfg.Threats.OutputPath); statErr != nil {
		t.Fatalf("expected threat file: %v", statErr)
	}
	data, err := os.ReadFile(cfg.MetricsTextfile)
	if err != nil {
		t.Fatalf("read metrics: %v", err)
	}
	if strings.Contains(string(data), `job="angles"`) {
		t.Fatalf("failed angle job must not be marked successful:\n%s", data)
	}
}

func TestLockedWriter(t *testing.T) {
	var buf bytes.Buffer
	w := &lockedWriter{w: &buf}
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = w.Write([]byte("line\n"))
		}()
	}
	wg.Wait()
	if got := strings.Count(buf.String(), "line\n"); got != 8 {
		t.Fatalf("lines = %d, want 8", got)
	}

	discard := &lockedWriter{}
	if n, err := discard.Write([]byte("abc")); n != 3 || err != nil {
		t.Fatalf("nil writer = %d, %v", n, err)
	}
}
