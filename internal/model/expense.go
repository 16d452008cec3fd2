package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Expense is a confirmed, ledger-resident spending record. The ID embeds
// the origin year (see internal/id) so the ledger can shard into yearly
// partitions. Append-mostly; updated in place or deleted by ID.
type Expense struct {
	ID          string
	Amount      decimal.Decimal // always positive
	Date        time.Time
	CategoryID  string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
