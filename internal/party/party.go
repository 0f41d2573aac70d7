// Package party derives the participant labels used as dataset column names.
package party

import (
	"errors"
	"fmt"
)

// MaxParties is the number of single-letter labels available (party_A through
// party_Z). Larger party counts are rejected rather than wrapped around.
const MaxParties = 26

// ErrIndexOutOfRange is returned for indices that have no single-letter label.
var ErrIndexOutOfRange = errors.New("party index out of range")

// ID identifies one participant, e.g. "party_A".
type ID string

// String returns the label.
func (id ID) String() string { return string(id) }

// FromIndex returns the label for a zero-based party index.
func FromIndex(index int) (ID, error) {
	if index < 0 || index >= MaxParties {
		return "", fmt.Errorf("%w: %d (want 0..%d)", ErrIndexOutOfRange, index, MaxParties-1)
	}
	return ID(fmt.Sprintf("party_%c", 'A'+rune(index))), nil
}

// List returns the labels for indices 0..count-1 in order.
func List(count int) ([]ID, error) {
	if count <= 0 {
		return nil, fmt.Errorf("party count must be positive, got %d", count)
	}
	if count > MaxParties {
		return nil, fmt.Errorf("%w: %d parties exceeds %d", ErrIndexOutOfRange, count, MaxParties)
	}
	ids := make([]ID, count)
	for i := range ids {
		id, err := FromIndex(i)
		if err != nil {
			return nil, err
		}
		ids[i] = id
	}
	return ids, nil
}
