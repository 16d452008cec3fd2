package reconcile

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/tally-dev/tally/internal/classify"
	"github.com/tally-dev/tally/internal/id"
	"github.com/tally-dev/tally/internal/ledger"
	"github.com/tally-dev/tally/internal/model"
	"github.com/tally-dev/tally/internal/rules"
	"github.com/tally-dev/tally/internal/store"
)

// Service drives pending transactions through their lifecycle. All
// operations load the full pending set, mutate it in memory and write
// it back, so a transaction whose status changed moves between
// partition files automatically.
type Service struct {
	store  store.Store
	ledger *ledger.Service
	log    zerolog.Logger

	now   func() time.Time
	newID func(time.Time) string

	// staged holds session-only category picks keyed by transaction ID.
	// They become manual classifications on SaveStaged or Confirm and
	// are lost if the session ends without either.
	staged map[string]string
}

// NewService creates a reconciliation Service over a record store and
// the ledger the confirmed expenses land in.
func NewService(st store.Store, led *ledger.Service, log zerolog.Logger) *Service {
	return &Service{
		store:  st,
		ledger: led,
		log:    log,
		now:    time.Now,
		newID:  id.New,
		staged: make(map[string]string),
	}
}

// Load returns every pending transaction across all partitions, sorted
// by date then ID for stable listings.
func (s *Service) Load() ([]model.PendingTransaction, error) {
	var txns []model.PendingTransaction
	for _, partition := range pendingPartitions {
		rows, err := s.store.GetRows(partition)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", partition, err)
		}
		for i, row := range rows {
			txn, err := UnmarshalTransaction(row)
			if err != nil {
				return nil, fmt.Errorf("%s row %d: %w", partition, i+2, err)
			}
			txns = append(txns, txn)
		}
	}
	sort.Slice(txns, func(i, j int) bool {
		if !txns[i].Date.Equal(txns[j].Date) {
			return txns[i].Date.Before(txns[j].Date)
		}
		return txns[i].ID < txns[j].ID
	})
	return txns, nil
}

// Get returns one pending transaction by ID.
func (s *Service) Get(txnID string) (model.PendingTransaction, error) {
	txns, err := s.Load()
	if err != nil {
		return model.PendingTransaction{}, err
	}
	for _, txn := range txns {
		if txn.ID == txnID {
			return txn, nil
		}
	}
	return model.PendingTransaction{}, fmt.Errorf("transaction %s not found", txnID)
}

// persist rewrites every pending partition from the given set. Each
// partition is replaced wholesale so transactions follow their status.
func (s *Service) persist(txns []model.PendingTransaction) error {
	byPartition := make(map[string][]store.Row, len(pendingPartitions))
	for _, partition := range pendingPartitions {
		byPartition[partition] = nil
	}
	for _, txn := range txns {
		partition := PartitionFor(txn.Status)
		if _, ok := byPartition[partition]; !ok {
			return fmt.Errorf("transaction %s has unknown status %q", txn.ID, txn.Status)
		}
		byPartition[partition] = append(byPartition[partition], MarshalTransaction(txn))
	}
	for _, partition := range pendingPartitions {
		if err := s.store.ReplaceAll(partition, byPartition[partition]); err != nil {
			return fmt.Errorf("writing %s: %w", partition, err)
		}
	}
	return nil
}

// appendBatch writes newly imported transactions without rewriting the
// existing partitions.
func (s *Service) appendBatch(txns []model.PendingTransaction) error {
	byPartition := make(map[string][]store.Row)
	for _, txn := range txns {
		partition := PartitionFor(txn.Status)
		byPartition[partition] = append(byPartition[partition], MarshalTransaction(txn))
	}
	for _, partition := range pendingPartitions {
		rows := byPartition[partition]
		if len(rows) == 0 {
			continue
		}
		if err := s.store.AppendRows(partition, rows); err != nil {
			return fmt.Errorf("appending to %s: %w", partition, err)
		}
	}
	return nil
}

// mutate loads the pending set, applies fn to the transaction with the
// given ID and persists the result.
func (s *Service) mutate(txnID string, fn func(*model.PendingTransaction) error) error {
	txns, err := s.Load()
	if err != nil {
		return err
	}
	for i := range txns {
		if txns[i].ID != txnID {
			continue
		}
		if err := fn(&txns[i]); err != nil {
			return err
		}
		return s.persist(txns)
	}
	return fmt.Errorf("transaction %s not found", txnID)
}

// Ignore parks a transaction. Its classification fields are left
// untouched so unignoring restores them.
func (s *Service) Ignore(txnID string) error {
	return s.mutate(txnID, func(txn *model.PendingTransaction) error {
		txn.Status = model.StatusIgnored
		return nil
	})
}

// Unignore returns an ignored transaction to uncategorized. It never
// restores auto-mapped: the rule pass may be stale, so the transaction
// re-enters the queue and the next rule run re-evaluates it. Category
// and source survive the round trip.
func (s *Service) Unignore(txnID string) error {
	return s.mutate(txnID, func(txn *model.PendingTransaction) error {
		if txn.Status != model.StatusIgnored {
			return fmt.Errorf("transaction %s is not ignored", txnID)
		}
		txn.Status = model.StatusUncategorized
		return nil
	})
}

// Delete removes a pending transaction outright.
func (s *Service) Delete(txnID string) error {
	txns, err := s.Load()
	if err != nil {
		return err
	}
	kept := txns[:0]
	found := false
	for _, txn := range txns {
		if txn.ID == txnID {
			found = true
			continue
		}
		kept = append(kept, txn)
	}
	if !found {
		return fmt.Errorf("transaction %s not found", txnID)
	}
	delete(s.staged, txnID)
	return s.persist(kept)
}

// SetCategory records a human category pick. Manual outranks every
// other source, so the assignment always succeeds; an empty category
// clears the classification entirely.
func (s *Service) SetCategory(txnID, categoryID string) error {
	return s.mutate(txnID, func(txn *model.PendingTransaction) error {
		setManualCategory(txn, categoryID)
		return nil
	})
}

func setManualCategory(txn *model.PendingTransaction, categoryID string) {
	if categoryID == "" {
		txn.CategoryID = ""
		txn.Source = ""
		txn.MatchedRuleID = ""
		if txn.Status != model.StatusIgnored {
			txn.Status = model.StatusUncategorized
		}
		return
	}
	txn.CategoryID = categoryID
	txn.Source = model.SourceManual
	txn.MatchedRuleID = ""
	if txn.Status != model.StatusIgnored {
		txn.Status = model.StatusCategorized
	}
}

// StageCategory records a category pick for this session only, without
// touching the store. Staged picks win over the persisted category when
// confirming and are flushed by SaveStaged.
func (s *Service) StageCategory(txnID, categoryID string) {
	s.staged[txnID] = categoryID
}

// StagedCategory returns the session override for a transaction, if any.
func (s *Service) StagedCategory(txnID string) (string, bool) {
	categoryID, ok := s.staged[txnID]
	return categoryID, ok
}

// SaveStaged persists every staged pick as a manual classification and
// clears the staging map. Staged IDs no longer in the pending set are
// dropped silently.
func (s *Service) SaveStaged() error {
	if len(s.staged) == 0 {
		return nil
	}
	txns, err := s.Load()
	if err != nil {
		return err
	}
	for i := range txns {
		if categoryID, ok := s.staged[txns[i].ID]; ok {
			setManualCategory(&txns[i], categoryID)
		}
	}
	if err := s.persist(txns); err != nil {
		return err
	}
	s.staged = make(map[string]string)
	return nil
}

// ApplyRules runs the full rule pass over the pending set. With dryRun
// the summary reports what would change and nothing is written.
func (s *Service) ApplyRules(ruleList []model.TransactionRule, dryRun bool) (rules.ApplySummary, error) {
	txns, err := s.Load()
	if err != nil {
		return rules.ApplySummary{}, err
	}
	updated, summary := rules.ApplyAll(txns, ruleList)
	if dryRun {
		return summary, nil
	}
	if err := s.persist(updated); err != nil {
		return summary, err
	}
	s.log.Info().
		Int("scanned", summary.Scanned).
		Int("matched", summary.Matched).
		Int("reverted", summary.Reverted).
		Msg("applied rules")
	return summary, nil
}

// ApplyNewRule tests one freshly created rule against uncategorized
// transactions and persists the matches.
func (s *Service) ApplyNewRule(rule model.TransactionRule) (int, error) {
	txns, err := s.Load()
	if err != nil {
		return 0, err
	}
	updated, matched := rules.ApplyNew(txns, rule)
	if matched == 0 {
		return 0, nil
	}
	if err := s.persist(updated); err != nil {
		return 0, err
	}
	return matched, nil
}

// ApplySuggestions merges classifier output into the pending set and
// persists it. Returns the number of suggestions applied.
func (s *Service) ApplySuggestions(suggestions []classify.Suggestion) (int, error) {
	txns, err := s.Load()
	if err != nil {
		return 0, err
	}
	updated, applied := classify.ApplySuggestions(txns, suggestions)
	if applied == 0 {
		return 0, nil
	}
	if err := s.persist(updated); err != nil {
		return 0, err
	}
	s.log.Info().Int("applied", applied).Msg("applied classifier suggestions")
	return applied, nil
}

// ValidationError reports which transactions in a confirm batch are not
// confirmable. The whole batch is rejected before anything is written.
type ValidationError struct {
	IDs []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%d transaction(s) cannot be confirmed: %s", len(e.IDs), strings.Join(e.IDs, ", "))
}

// ConfirmSummary reports a confirm run.
type ConfirmSummary struct {
	Confirmed int
	Appended  int // expenses actually written; lower than Confirmed on a retry
}

// Confirm turns the given pending transactions into ledger expenses and
// removes them from the pending set. The batch is validated up front:
// every transaction must exist, be non-ignored, carry a category (a
// staged pick counts) and a positive amount, or the whole batch is
// rejected with a ValidationError and nothing is written. The expense
// reuses the transaction's ID, so re-running a confirm that failed
// between the ledger write and the pending cleanup cannot duplicate
// expenses.
func (s *Service) Confirm(txnIDs []string) (ConfirmSummary, error) {
	if len(txnIDs) == 0 {
		return ConfirmSummary{}, nil
	}
	txns, err := s.Load()
	if err != nil {
		return ConfirmSummary{}, err
	}
	byID := make(map[string]int, len(txns))
	for i, txn := range txns {
		byID[txn.ID] = i
	}

	var invalid []string
	batch := make([]model.PendingTransaction, 0, len(txnIDs))
	for _, txnID := range txnIDs {
		i, ok := byID[txnID]
		if !ok {
			invalid = append(invalid, txnID)
			continue
		}
		txn := txns[i]
		if staged, ok := s.staged[txn.ID]; ok {
			setManualCategory(&txn, staged)
		}
		if !confirmable(txn) {
			invalid = append(invalid, txnID)
			continue
		}
		batch = append(batch, txn)
	}
	if len(invalid) > 0 {
		return ConfirmSummary{}, &ValidationError{IDs: invalid}
	}

	now := s.now().UTC()
	expenses := make([]model.Expense, 0, len(batch))
	confirmed := make(map[string]bool, len(batch))
	for _, txn := range batch {
		expenses = append(expenses, model.Expense{
			ID:          txn.ID,
			Amount:      txn.Amount,
			Date:        txn.Date,
			CategoryID:  txn.CategoryID,
			Description: txn.Description,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
		confirmed[txn.ID] = true
	}

	// Ledger first. If the pending cleanup below fails, a retry is safe
	// because Append skips IDs already present.
	appended, err := s.ledger.Append(expenses)
	if err != nil {
		return ConfirmSummary{}, fmt.Errorf("writing ledger: %w", err)
	}

	kept := txns[:0]
	for _, txn := range txns {
		if confirmed[txn.ID] {
			delete(s.staged, txn.ID)
			continue
		}
		kept = append(kept, txn)
	}
	if err := s.persist(kept); err != nil {
		return ConfirmSummary{}, fmt.Errorf("removing confirmed transactions: %w", err)
	}

	summary := ConfirmSummary{Confirmed: len(batch), Appended: appended}
	s.log.Info().
		Int("confirmed", summary.Confirmed).
		Int("appended", summary.Appended).
		Msg("confirmed transactions")
	return summary, nil
}

// ConfirmAll confirms every pending transaction that is ready and
// leaves the rest in the queue. Unlike Confirm, where the caller named
// specific transactions and an unready one rejects the batch, the set
// here is self-selected: right after an import the queue normally holds
// uncategorized rows, and they must not block confirming the mapped
// ones.
func (s *Service) ConfirmAll() (ConfirmSummary, error) {
	txns, err := s.Load()
	if err != nil {
		return ConfirmSummary{}, err
	}
	var txnIDs []string
	for _, txn := range txns {
		if staged, ok := s.staged[txn.ID]; ok {
			setManualCategory(&txn, staged)
		}
		if !confirmable(txn) {
			continue
		}
		txnIDs = append(txnIDs, txn.ID)
	}
	return s.Confirm(txnIDs)
}

func confirmable(txn model.PendingTransaction) bool {
	return txn.Status != model.StatusIgnored &&
		txn.CategoryID != "" &&
		txn.Amount.IsPositive() &&
		!txn.Date.IsZero()
}
