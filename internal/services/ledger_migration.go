package services

import (
	"github.com/google/uuid"

	"github.com/niatrack/nia/internal/models"
)

// migrationBatchSize caps the rows written per batch, mirroring backend
// batch-operation limits.
const migrationBatchSize = 450

// MigrationRunStore persists the resumable state of one legacy import.
type MigrationRunStore interface {
	ActiveRun(userID uint) (models.MigrationRun, bool, error)
	SaveRun(run *models.MigrationRun) error
}

// MigrationService owns the one-time legacy import and the full
// recompute-from-source-of-truth repair.
//
// The import is deliberately not transactional end to end: batches land
// outside the aggregate guard, so a crash between the last batch and the
// final guarded commit leaves imported rows next to the uncleared legacy
// array. The run row records how far the import got; re-running resumes past
// the written rows, and Reconcile repairs the aggregates either way.
type MigrationService struct {
	store LedgerStore
	runs  MigrationRunStore
}

func NewMigrationService(store LedgerStore, runs MigrationRunStore) *MigrationService {
	return &MigrationService{store: store, runs: runs}
}

// MigrateLegacy detects the old document shape (transactions inlined on the
// aggregate), replays every legacy transaction through the same accumulation
// logic as posting, writes the rows in bounded batches, then commits the
// rebuilt accounts and month stats and clears the legacy array in one guarded
// write. Returns the number of migrated transactions.
func (service *MigrationService) MigrateLegacy(userID uint) (int, error) {
	aggregate, found, err := service.store.LoadAggregate(userID)
	if err != nil {
		return 0, err
	}
	if !found || len(aggregate.LegacyTransactions) == 0 {
		return 0, nil
	}
	ensureAggregateDefaults(&aggregate)

	run, active, err := service.runs.ActiveRun(userID)
	if err != nil {
		return 0, err
	}
	if !active {
		run = models.MigrationRun{ID: uuid.NewString(), UserID: userID}
		if err := service.runs.SaveRun(&run); err != nil {
			return 0, err
		}
	}

	// Replay accumulates on top of the current account balances, exactly as
	// the rows would have if posted one by one.
	rebuilt := models.FinanceAggregate{
		UserID:     userID,
		Accounts:   aggregate.Accounts,
		MonthStats: map[string]models.MonthStats{},
	}

	batch := make([]models.Transaction, 0, migrationBatchSize)
	for index, legacy := range aggregate.LegacyTransactions {
		legacy.UserID = userID
		applyTransaction(&rebuilt, legacy)

		// Rows below the run offset were written by an earlier attempt.
		if index < run.OffsetIndex {
			continue
		}

		batch = append(batch, legacy)
		if len(batch) >= migrationBatchSize {
			if err := service.flushBatch(&run, batch, index+1); err != nil {
				return 0, err
			}
			batch = batch[:0]
		}
	}
	if len(batch) > 0 {
		if err := service.flushBatch(&run, batch, len(aggregate.LegacyTransactions)); err != nil {
			return 0, err
		}
	}

	err = service.store.RunAtomic(userID, func(unit LedgerUnit) error {
		current, exists, err := unit.Aggregate()
		if err != nil {
			return err
		}
		if !exists {
			current = models.NewFinanceAggregate(userID)
		}
		current.Accounts = rebuilt.Accounts
		current.MonthStats = rebuilt.MonthStats
		current.LegacyTransactions = nil
		return unit.SaveAggregate(&current)
	})
	if err != nil {
		return 0, err
	}

	run.Completed = true
	if err := service.runs.SaveRun(&run); err != nil {
		return 0, err
	}
	return len(aggregate.LegacyTransactions), nil
}

func (service *MigrationService) flushBatch(run *models.MigrationRun, batch []models.Transaction, nextOffset int) error {
	if err := service.store.InsertBatch(run.UserID, batch); err != nil {
		return err
	}
	run.OffsetIndex = nextOffset
	return service.runs.SaveRun(run)
}

// Reconcile rebuilds the aggregate from the transaction collection alone:
// balances reset to the zero baseline, every posted row replays in storage
// order, and the result overwrites the stored accounts and month stats. With
// no corruption this is a fixed point, so running it twice changes nothing.
func (service *MigrationService) Reconcile(userID uint) (models.FinanceAggregate, error) {
	transactions, err := service.store.ListAll(userID)
	if err != nil {
		return models.FinanceAggregate{}, err
	}

	rebuilt := models.FinanceAggregate{
		UserID:     userID,
		Accounts:   models.DefaultAccounts(),
		MonthStats: map[string]models.MonthStats{},
	}
	for _, tx := range transactions {
		applyTransaction(&rebuilt, tx)
	}

	err = service.store.RunAtomic(userID, func(unit LedgerUnit) error {
		current, exists, err := unit.Aggregate()
		if err != nil {
			return err
		}
		if !exists {
			return ErrAggregateMissing
		}
		current.Accounts = rebuilt.Accounts
		current.MonthStats = rebuilt.MonthStats
		return unit.SaveAggregate(&current)
	})
	if err != nil {
		return models.FinanceAggregate{}, err
	}
	return rebuilt, nil
}
