package id

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// suffixLen is the number of UUID hex characters kept in an ID.
const suffixLen = 8

// New returns a transaction/expense ID like "2024-1a2b3c4d". The leading
// year is the transaction's origin year, which the ledger uses to pick
// the yearly partition. The suffix is random, so IDs minted for the same
// year never collide in practice.
func New(date time.Time) string {
	return Format(date.Year(), suffix())
}

// Format builds an ID from an explicit year and suffix.
func Format(year int, suffix string) string {
	return fmt.Sprintf("%04d-%s", year, suffix)
}

// Year extracts the origin year embedded in an ID.
func Year(id string) (int, error) {
	part, _, ok := strings.Cut(id, "-")
	if !ok {
		return 0, fmt.Errorf("invalid ID format: %q", id)
	}
	year, err := strconv.Atoi(part)
	if err != nil {
		return 0, fmt.Errorf("invalid year in ID %q: %w", id, err)
	}
	if year < 1000 || year > 9999 {
		return 0, fmt.Errorf("implausible year %d in ID %q", year, id)
	}
	return year, nil
}

func suffix() string {
	u := uuid.NewString()
	return strings.ReplaceAll(u, "-", "")[:suffixLen]
}
