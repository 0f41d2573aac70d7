// Package assembler builds the per-party angle table from fetched entropy.
//
// Parties are processed strictly in index order, one fetch at a time, since
// every fetch draws on the same external rate limit. The table is written
// only after every party has been fetched; a failure for any party leaves
// the output location untouched.
package assembler

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/louisbranch/qdatasets/internal/angle"
	"github.com/louisbranch/qdatasets/internal/dataset"
	"github.com/louisbranch/qdatasets/internal/entropy"
	"github.com/louisbranch/qdatasets/internal/party"
)

const instrumentationName = "github.com/louisbranch/qdatasets/internal/assembler"

// Fetcher supplies raw entropy for one party.
type Fetcher interface {
	Fetch(ctx context.Context, byteCount int, policy entropy.RetryPolicy) ([]uint8, bool)
}

// AcquisitionError reports that a party's entropy could not be obtained.
type AcquisitionError struct {
	Party party.ID
	// Detail is set when bytes arrived but could not be used.
	Detail string
}

func (e *AcquisitionError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("failed to fetch QRNG values for %s: %s", e.Party, e.Detail)
	}
	return fmt.Sprintf("failed to fetch QRNG values for %s", e.Party)
}

// ExitCode distinguishes acquisition failures from usage errors.
func (e *AcquisitionError) ExitCode() int { return 3 }

// RequestBytes is the request size for sampleCount samples. One byte yields
// one angle, so sampleCount*8 bits are asked for, i.e. sampleCount bytes.
// The result is never smaller than sampleCount.
func RequestBytes(sampleCount int) int {
	bits := sampleCount * 8
	return bits / 8
}

// Assembler turns fetched entropy into an angle table.
type Assembler struct {
	source   Fetcher
	policy   entropy.RetryPolicy
	progress *message.Printer
	out      io.Writer
	tracer   trace.Tracer
}

// New returns an Assembler that fetches through source with policy and
// writes progress lines to out (nil discards them).
func New(source Fetcher, policy entropy.RetryPolicy, out io.Writer) *Assembler {
	if out == nil {
		out = io.Discard
	}
	return &Assembler{
		source:   source,
		policy:   policy,
		progress: message.NewPrinter(language.English),
		out:      out,
		tracer:   otel.Tracer(instrumentationName),
	}
}

// BuildAngleTable fetches sampleCount angles for each of partyCount parties.
// The columns are named party_A, party_B, ... in that order and each holds
// exactly sampleCount values in [0, 2π).
func (a *Assembler) BuildAngleTable(ctx context.Context, partyCount, sampleCount int) (dataset.Table[float64], error) {
	if a.source == nil {
		return dataset.Table[float64]{}, errors.New("entropy source is required")
	}
	if sampleCount <= 0 {
		return dataset.Table[float64]{}, fmt.Errorf("sample count must be positive, got %d", sampleCount)
	}
	ids, err := party.List(partyCount)
	if err != nil {
		return dataset.Table[float64]{}, err
	}

	ctx, span := a.tracer.Start(ctx, "assembler.build_angle_table", trace.WithAttributes(
		attribute.Int("dataset.parties", partyCount),
		attribute.Int("dataset.samples", sampleCount),
	))
	defer span.End()

	columns := make([]dataset.Column[float64], 0, len(ids))
	for _, id := range ids {
		a.progress.Fprintf(a.out, "Fetching QRNG values for %s...\n", id)

		raw, ok := a.source.Fetch(ctx, RequestBytes(sampleCount), a.policy)
		if !ok {
			err := &AcquisitionError{Party: id}
			span.SetStatus(codes.Error, err.Error())
			return dataset.Table[float64]{}, err
		}
		if len(raw) < sampleCount {
			err := &AcquisitionError{Party: id, Detail: fmt.Sprintf("got %d bytes, need %d", len(raw), sampleCount)}
			span.SetStatus(codes.Error, err.Error())
			return dataset.Table[float64]{}, err
		}

		columns = append(columns, dataset.Column[float64]{
			Name:   id.String(),
			Values: angle.ToAngles(raw[:sampleCount]),
		})
		a.progress.Fprintf(a.out, "Received %d samples for %s\n", sampleCount, id)
	}

	table, err := dataset.New(columns...)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return dataset.Table[float64]{}, fmt.Errorf("assemble angle table: %w", err)
	}
	return table, nil
}

// Run builds the angle table and writes it to path, replacing any previous
// file there. Nothing is written unless every party succeeded.
func (a *Assembler) Run(ctx context.Context, partyCount, sampleCount int, path string) (dataset.Table[float64], error) {
	table, err := a.BuildAngleTable(ctx, partyCount, sampleCount)
	if err != nil {
		return dataset.Table[float64]{}, err
	}
	if err := dataset.WriteFile(path, table); err != nil {
		return dataset.Table[float64]{}, fmt.Errorf("write angle table: %w", err)
	}
	a.progress.Fprintf(a.out, "QRNG angles saved to %s\n", path)
	return table, nil
}
