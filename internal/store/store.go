// Package store defines the record store boundary the reconciliation
// core talks to, plus a CSV-file implementation. Partitions are opaque
// slash-separated names; the pending set partitions by classification
// status and the ledger by calendar year.
package store

// Row is one stored record. By convention the record ID is the first
// field.
type Row []string

// ID returns the row's record ID ("" for an empty row).
func (r Row) ID() string {
	if len(r) == 0 {
		return ""
	}
	return r[0]
}

// Store is a key-ordered record store reached through row operations.
// It has no cross-partition transaction primitive; callers sequence
// multi-partition changes so retries stay safe (see reconcile).
type Store interface {
	// GetRows returns all rows in a partition, in stored order. A
	// missing partition yields no rows and no error.
	GetRows(partition string) ([]Row, error)
	// AppendRows adds rows to the end of a partition, creating it on
	// first write.
	AppendRows(partition string, rows []Row) error
	// UpdateRow replaces the row whose ID matches, in place.
	UpdateRow(partition, id string, row Row) error
	// DeleteRow removes the row whose ID matches. Deleting an absent ID
	// is a no-op so retried batch operations stay idempotent.
	DeleteRow(partition, id string) error
	// ReplaceAll rewrites the partition with exactly the given rows.
	ReplaceAll(partition string, rows []Row) error
}
