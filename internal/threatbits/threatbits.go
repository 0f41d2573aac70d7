// Package threatbits generates the synthetic per-party threat indicators.
//
// It is independent of the entropy pipeline: bits come from a local
// pseudo-random source, so generation has no failure modes beyond invalid
// sizes and output errors.
package threatbits

import (
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/louisbranch/qdatasets/internal/dataset"
	"github.com/louisbranch/qdatasets/internal/party"
)

// Generate draws sampleCount independent fair bits for each party.
func Generate(partyCount, sampleCount int, src rand.Source) (dataset.Table[int], error) {
	if sampleCount <= 0 {
		return dataset.Table[int]{}, fmt.Errorf("sample count must be positive, got %d", sampleCount)
	}
	if src == nil {
		return dataset.Table[int]{}, fmt.Errorf("random source is required")
	}
	ids, err := party.List(partyCount)
	if err != nil {
		return dataset.Table[int]{}, err
	}

	coin := distuv.Bernoulli{P: 0.5, Src: src}
	columns := make([]dataset.Column[int], len(ids))
	for i, id := range ids {
		bits := make([]int, sampleCount)
		for j := range bits {
			bits[j] = int(coin.Rand())
		}
		columns[i] = dataset.Column[int]{Name: id.String(), Values: bits}
	}
	return dataset.New(columns...)
}

// Run generates the table and writes it to path, replacing any existing file.
func Run(partyCount, sampleCount int, src rand.Source, path string) (dataset.Table[int], error) {
	table, err := Generate(partyCount, sampleCount, src)
	if err != nil {
		return dataset.Table[int]{}, err
	}
	if err := dataset.WriteFile(path, table); err != nil {
		return dataset.Table[int]{}, fmt.Errorf("write threat table: %w", err)
	}
	return table, nil
}
