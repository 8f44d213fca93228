package services

import (
	"errors"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/niatrack/nia/internal/models"
)

var (
	ErrInvalidTransactionType = errors.New("transaction type must be income or expense")
	ErrInvalidAmount          = errors.New("transaction amount must be positive")
	ErrMissingAccount         = errors.New("transaction account is required")
	ErrMissingCategory        = errors.New("transaction category is required")
	ErrMalformedDate          = errors.New("transaction date is malformed")
	ErrInvalidCursor          = errors.New("pagination cursor is malformed")

	// ErrAggregateMissing marks a reversal or repair against a user who has no
	// finance aggregate. That is a data error, not a user mistake.
	ErrAggregateMissing = errors.New("finance aggregate does not exist")

	// ErrAggregateConflict is returned by stores when the guarded
	// read-modify-write lost a race on the aggregate's version.
	ErrAggregateConflict = errors.New("finance aggregate version conflict")
)

// postRetryLimit bounds the transparent retries on a version conflict before
// the failure is surfaced as transient.
const postRetryLimit = 3

// LedgerUnit is the view of storage inside one atomic ledger operation. Every
// call is part of the same all-or-nothing unit: if SaveAggregate conflicts,
// inserted or removed rows roll back with it.
type LedgerUnit interface {
	Aggregate() (models.FinanceAggregate, bool, error)
	SaveAggregate(aggregate *models.FinanceAggregate) error
	InsertTransaction(tx *models.Transaction) error
	RemoveTransaction(id int64) error
}

// LedgerStore serializes all balance and month-stat mutation for a user
// through RunAtomic; the transaction collection is append/delete-by-id plus
// the full scan reconciliation needs.
type LedgerStore interface {
	RunAtomic(userID uint, fn func(unit LedgerUnit) error) error
	LoadAggregate(userID uint) (models.FinanceAggregate, bool, error)
	ListPage(userID uint, cursor int64, pageSize int) ([]models.Transaction, error)
	ListAll(userID uint) ([]models.Transaction, error)
	InsertBatch(userID uint, batch []models.Transaction) error
}

type LedgerService struct {
	store LedgerStore
}

func NewLedgerService(store LedgerStore) *LedgerService {
	return &LedgerService{store: store}
}

// Post applies one transaction: account balance, month stats and the
// transaction row move together or not at all. A first post creates the
// aggregate from the default zero-balance accounts. Conflicts retry
// transparently a bounded number of times.
func (service *LedgerService) Post(userID uint, tx models.Transaction) (models.Transaction, error) {
	if err := validateTransaction(tx); err != nil {
		return models.Transaction{}, err
	}
	if tx.ID == 0 {
		tx.ID = time.Now().UnixMilli()
	}
	tx.UserID = userID

	err := service.withConflictRetry(func() error {
		return service.store.RunAtomic(userID, func(unit LedgerUnit) error {
			aggregate, found, err := unit.Aggregate()
			if err != nil {
				return err
			}
			if !found {
				aggregate = models.NewFinanceAggregate(userID)
			}
			ensureAggregateDefaults(&aggregate)

			applyTransaction(&aggregate, tx)

			if err := unit.InsertTransaction(&tx); err != nil {
				return err
			}
			return unit.SaveAggregate(&aggregate)
		})
	})
	if err != nil {
		return models.Transaction{}, err
	}
	return tx, nil
}

// Delete reverses a posted transaction with the exact inverse arithmetic and
// removes its row, under the same guard. Reversing into a missing aggregate
// is an error: there is nothing to reverse from.
func (service *LedgerService) Delete(userID uint, tx models.Transaction) error {
	return service.withConflictRetry(func() error {
		return service.store.RunAtomic(userID, func(unit LedgerUnit) error {
			aggregate, found, err := unit.Aggregate()
			if err != nil {
				return err
			}
			if !found {
				return ErrAggregateMissing
			}
			ensureAggregateDefaults(&aggregate)

			reverseTransaction(&aggregate, tx)

			if err := unit.RemoveTransaction(tx.ID); err != nil {
				return err
			}
			return unit.SaveAggregate(&aggregate)
		})
	})
}

// Transactions returns one history page, newest first, with an opaque cursor
// for the next page. An empty cursor starts from the top; an empty result
// cursor means the history is exhausted.
func (service *LedgerService) Transactions(userID uint, cursor string, pageSize int) ([]models.Transaction, string, error) {
	if pageSize <= 0 {
		pageSize = 10
	}

	after := int64(0)
	if cursor != "" {
		parsed, err := strconv.ParseInt(cursor, 10, 64)
		if err != nil {
			return nil, "", ErrInvalidCursor
		}
		after = parsed
	}

	page, err := service.store.ListPage(userID, after, pageSize)
	if err != nil {
		return nil, "", err
	}

	next := ""
	if len(page) == pageSize {
		next = strconv.FormatInt(page[len(page)-1].ID, 10)
	}
	return page, next, nil
}

func (service *LedgerService) Aggregate(userID uint) (models.FinanceAggregate, bool, error) {
	aggregate, found, err := service.store.LoadAggregate(userID)
	if err != nil || !found {
		return models.FinanceAggregate{}, found, err
	}
	ensureAggregateDefaults(&aggregate)
	return aggregate, true, nil
}

func (service *LedgerService) withConflictRetry(operation func() error) error {
	var err error
	for attempt := 0; attempt < postRetryLimit; attempt++ {
		err = operation()
		if !errors.Is(err, ErrAggregateConflict) {
			return err
		}
	}
	return err
}

func validateTransaction(tx models.Transaction) error {
	if tx.Type != models.TransactionIncome && tx.Type != models.TransactionExpense {
		return ErrInvalidTransactionType
	}
	if !tx.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if tx.AccountID == "" {
		return ErrMissingAccount
	}
	if tx.Category == "" {
		return ErrMissingCategory
	}
	if _, err := ParseISODate(tx.DateISO, time.UTC); err != nil {
		return ErrMalformedDate
	}
	return nil
}

func ensureAggregateDefaults(aggregate *models.FinanceAggregate) {
	if len(aggregate.Accounts) == 0 {
		aggregate.Accounts = models.DefaultAccounts()
	}
	if aggregate.MonthStats == nil {
		aggregate.MonthStats = map[string]models.MonthStats{}
	}
}

// applyTransaction is the single accumulation path shared by posting, legacy
// migration replay and reconciliation.
func applyTransaction(aggregate *models.FinanceAggregate, tx models.Transaction) {
	for index := range aggregate.Accounts {
		account := &aggregate.Accounts[index]
		if account.ID != tx.AccountID {
			continue
		}
		base := account.CurrentBalance()
		if tx.Type == models.TransactionIncome {
			account.SetBalance(base.Add(tx.Amount))
		} else {
			account.SetBalance(base.Sub(tx.Amount))
		}
		break
	}

	key := MonthKey(tx.DateISO)
	bucket, exists := aggregate.MonthStats[key]
	if !exists {
		bucket = models.NewMonthStats()
	}
	if bucket.Categories == nil {
		bucket.Categories = map[string]models.CategoryStat{}
	}

	if tx.Type == models.TransactionIncome {
		bucket.Income = bucket.Income.Add(tx.Amount)
	} else {
		bucket.Expense = bucket.Expense.Add(tx.Amount)
		stat, found := bucket.Categories[tx.Category]
		if !found {
			stat = models.CategoryStat{Total: decimal.Zero, Emoji: tx.Emoji}
		}
		stat.Total = stat.Total.Add(tx.Amount)
		stat.Emoji = tx.Emoji
		bucket.Categories[tx.Category] = stat
	}
	aggregate.MonthStats[key] = bucket
}

// reverseTransaction undoes applyTransaction. A category whose total drops to
// zero or below disappears from the month bucket.
func reverseTransaction(aggregate *models.FinanceAggregate, tx models.Transaction) {
	for index := range aggregate.Accounts {
		account := &aggregate.Accounts[index]
		if account.ID != tx.AccountID {
			continue
		}
		base := account.CurrentBalance()
		if tx.Type == models.TransactionIncome {
			account.SetBalance(base.Sub(tx.Amount))
		} else {
			account.SetBalance(base.Add(tx.Amount))
		}
		break
	}

	key := MonthKey(tx.DateISO)
	bucket, exists := aggregate.MonthStats[key]
	if !exists {
		return
	}

	if tx.Type == models.TransactionIncome {
		bucket.Income = bucket.Income.Sub(tx.Amount)
	} else {
		bucket.Expense = bucket.Expense.Sub(tx.Amount)
		if stat, found := bucket.Categories[tx.Category]; found {
			stat.Total = stat.Total.Sub(tx.Amount)
			if stat.Total.Sign() <= 0 {
				delete(bucket.Categories, tx.Category)
			} else {
				bucket.Categories[tx.Category] = stat
			}
		}
	}
	aggregate.MonthStats[key] = bucket
}
