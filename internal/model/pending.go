package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TxnStatus represents the lifecycle state of a pending transaction.
type TxnStatus string

const (
	// StatusUncategorized is the entry state: no category assigned.
	StatusUncategorized TxnStatus = "uncategorized"
	// StatusAutoMapped means a categorization rule assigned the category.
	StatusAutoMapped TxnStatus = "auto-mapped"
	// StatusCategorized means a human or the AI classifier assigned the
	// category outside the rule pass.
	StatusCategorized TxnStatus = "categorized"
	// StatusIgnored parks a transaction; its classification fields are
	// left intact so unignoring loses nothing.
	StatusIgnored TxnStatus = "ignored"
)

// CategorySource records how a transaction's category was determined.
type CategorySource string

const (
	SourceRule   CategorySource = "rule"
	SourceAI     CategorySource = "ai"
	SourceManual CategorySource = "manual"
)

// Precedence ranks classification sources for overwrite decisions:
// manual > rule > ai > unclassified. A new classification may only
// replace an existing one of equal or lower precedence.
func (s CategorySource) Precedence() int {
	switch s {
	case SourceManual:
		return 3
	case SourceRule:
		return 2
	case SourceAI:
		return 1
	default:
		return 0
	}
}

// PendingTransaction is an imported but not-yet-ledgered spending record
// awaiting categorization and confirmation. Amount is always positive;
// signed source amounts are normalized to their absolute value.
//
// CategoryID and Source change together: a transaction never has a
// category without a source, or a source without a category.
type PendingTransaction struct {
	ID            string
	Date          time.Time
	Description   string
	Amount        decimal.Decimal
	CategoryID    string
	Status        TxnStatus
	MatchedRuleID string // set iff Source == SourceRule
	Source        CategorySource
	Origin        string // free-text label, e.g. the source file name
	CreatedAt     time.Time
}

// Classified reports whether a category has been assigned.
func (t PendingTransaction) Classified() bool {
	return t.CategoryID != ""
}
