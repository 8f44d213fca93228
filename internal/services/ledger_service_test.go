package services

import (
	"encoding/json"
	"errors"
	"sort"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/niatrack/nia/internal/models"
)

// fakeLedgerStore keeps aggregates and rows in memory. Changes made inside
// RunAtomic stage on the unit and only land when the callback succeeds, which
// mirrors the rollback the sqlite store provides.
type fakeLedgerStore struct {
	aggregates map[uint]models.FinanceAggregate
	rows       map[uint][]models.Transaction

	// conflicts injects this many version-conflict failures into SaveAggregate.
	conflicts int
}

func newFakeLedgerStore() *fakeLedgerStore {
	return &fakeLedgerStore{
		aggregates: map[uint]models.FinanceAggregate{},
		rows:       map[uint][]models.Transaction{},
	}
}

func cloneAggregate(t *testing.T, aggregate models.FinanceAggregate) models.FinanceAggregate {
	t.Helper()
	encoded, err := json.Marshal(aggregate)
	if err != nil {
		t.Fatalf("clone marshal: %v", err)
	}
	out := models.FinanceAggregate{}
	if err := json.Unmarshal(encoded, &out); err != nil {
		t.Fatalf("clone unmarshal: %v", err)
	}
	return out
}

type fakeLedgerUnit struct {
	store  *fakeLedgerStore
	t      *testing.T
	userID uint

	savedAggregate *models.FinanceAggregate
	inserted       []models.Transaction
	removed        []int64
}

func (unit *fakeLedgerUnit) Aggregate() (models.FinanceAggregate, bool, error) {
	aggregate, found := unit.store.aggregates[unit.userID]
	if !found {
		return models.FinanceAggregate{}, false, nil
	}
	return cloneAggregate(unit.t, aggregate), true, nil
}

func (unit *fakeLedgerUnit) SaveAggregate(aggregate *models.FinanceAggregate) error {
	if unit.store.conflicts > 0 {
		unit.store.conflicts--
		return ErrAggregateConflict
	}
	staged := cloneAggregate(unit.t, *aggregate)
	unit.savedAggregate = &staged
	return nil
}

func (unit *fakeLedgerUnit) InsertTransaction(tx *models.Transaction) error {
	unit.inserted = append(unit.inserted, *tx)
	return nil
}

func (unit *fakeLedgerUnit) RemoveTransaction(id int64) error {
	unit.removed = append(unit.removed, id)
	return nil
}

func (store *fakeLedgerStore) runAtomic(t *testing.T, userID uint, fn func(unit LedgerUnit) error) error {
	unit := &fakeLedgerUnit{store: store, t: t, userID: userID}
	if err := fn(unit); err != nil {
		return err
	}

	for _, tx := range unit.inserted {
		store.upsertRow(userID, tx)
	}
	for _, id := range unit.removed {
		kept := store.rows[userID][:0]
		for _, row := range store.rows[userID] {
			if row.ID != id {
				kept = append(kept, row)
			}
		}
		store.rows[userID] = kept
	}
	if unit.savedAggregate != nil {
		store.aggregates[userID] = *unit.savedAggregate
	}
	return nil
}

func (store *fakeLedgerStore) upsertRow(userID uint, tx models.Transaction) {
	tx.UserID = userID
	for index, row := range store.rows[userID] {
		if row.ID == tx.ID {
			store.rows[userID][index] = tx
			return
		}
	}
	store.rows[userID] = append(store.rows[userID], tx)
}

// boundLedgerStore adapts fakeLedgerStore to LedgerStore with the testing.T
// the clone helpers need.
type boundLedgerStore struct {
	t     *testing.T
	store *fakeLedgerStore
}

func (bound boundLedgerStore) RunAtomic(userID uint, fn func(unit LedgerUnit) error) error {
	return bound.store.runAtomic(bound.t, userID, fn)
}

func (bound boundLedgerStore) LoadAggregate(userID uint) (models.FinanceAggregate, bool, error) {
	aggregate, found := bound.store.aggregates[userID]
	if !found {
		return models.FinanceAggregate{}, false, nil
	}
	return cloneAggregate(bound.t, aggregate), true, nil
}

func (bound boundLedgerStore) ListPage(userID uint, cursor int64, pageSize int) ([]models.Transaction, error) {
	all := append([]models.Transaction{}, bound.store.rows[userID]...)
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })

	page := []models.Transaction{}
	for _, row := range all {
		if cursor > 0 && row.ID >= cursor {
			continue
		}
		page = append(page, row)
		if len(page) == pageSize {
			break
		}
	}
	return page, nil
}

func (bound boundLedgerStore) ListAll(userID uint) ([]models.Transaction, error) {
	all := append([]models.Transaction{}, bound.store.rows[userID]...)
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return all, nil
}

func (bound boundLedgerStore) InsertBatch(userID uint, batch []models.Transaction) error {
	for _, tx := range batch {
		bound.store.upsertRow(userID, tx)
	}
	return nil
}

func newTestLedger(t *testing.T) (*LedgerService, *fakeLedgerStore) {
	store := newFakeLedgerStore()
	return NewLedgerService(boundLedgerStore{t: t, store: store}), store
}

func money(value int64) decimal.Decimal {
	return decimal.NewFromInt(value)
}

func makeTransaction(id int64, txType string, accountID string, amount int64, category string, dateISO string) models.Transaction {
	return models.Transaction{
		ID:        id,
		Type:      txType,
		AccountID: accountID,
		Amount:    money(amount),
		Category:  category,
		Emoji:     "🍔",
		DateISO:   dateISO,
	}
}

func accountBalance(t *testing.T, aggregate models.FinanceAggregate, accountID string) decimal.Decimal {
	t.Helper()
	for _, account := range aggregate.Accounts {
		if account.ID == accountID {
			return account.CurrentBalance()
		}
	}
	t.Fatalf("account %s not found", accountID)
	return decimal.Zero
}

func TestPostCreatesAggregateAndAppliesExpense(t *testing.T) {
	ledger, store := newTestLedger(t)

	if _, err := ledger.Post(1, makeTransaction(1, models.TransactionIncome, "nequi", 100000, "Salario", "2024-03-05")); err != nil {
		t.Fatalf("income post failed: %v", err)
	}
	if _, err := ledger.Post(1, makeTransaction(2, models.TransactionExpense, "nequi", 50000, "Comida", "2024-03-10")); err != nil {
		t.Fatalf("expense post failed: %v", err)
	}

	aggregate := store.aggregates[1]
	if got := accountBalance(t, aggregate, "nequi"); !got.Equal(money(50000)) {
		t.Fatalf("expected nequi balance 50000, got %s", got)
	}

	march, found := aggregate.MonthStats["2024-03"]
	if !found {
		t.Fatal("expected a 2024-03 bucket")
	}
	if !march.Income.Equal(money(100000)) || !march.Expense.Equal(money(50000)) {
		t.Fatalf("unexpected month totals: income %s expense %s", march.Income, march.Expense)
	}
	if stat, ok := march.Categories["Comida"]; !ok || !stat.Total.Equal(money(50000)) {
		t.Fatalf("unexpected Comida bucket: %+v", march.Categories)
	}

	if len(store.rows[1]) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(store.rows[1]))
	}
}

func TestPostAssignsTimestampID(t *testing.T) {
	ledger, store := newTestLedger(t)

	tx := makeTransaction(0, models.TransactionIncome, "efectivo", 1000, "Otros", "2024-03-01")
	posted, err := ledger.Post(1, tx)
	if err != nil {
		t.Fatalf("post failed: %v", err)
	}
	if posted.ID == 0 {
		t.Fatal("expected an assigned id")
	}
	if store.rows[1][0].ID != posted.ID {
		t.Fatal("stored row must carry the assigned id")
	}
}

func TestPostValidation(t *testing.T) {
	ledger, _ := newTestLedger(t)

	cases := []struct {
		name string
		tx   models.Transaction
		want error
	}{
		{"bad type", makeTransaction(1, "transfer", "nequi", 100, "Comida", "2024-03-01"), ErrInvalidTransactionType},
		{"zero amount", makeTransaction(1, models.TransactionExpense, "nequi", 0, "Comida", "2024-03-01"), ErrInvalidAmount},
		{"missing account", makeTransaction(1, models.TransactionExpense, "", 100, "Comida", "2024-03-01"), ErrMissingAccount},
		{"missing category", makeTransaction(1, models.TransactionExpense, "nequi", 100, "", "2024-03-01"), ErrMissingCategory},
		{"bad date", makeTransaction(1, models.TransactionExpense, "nequi", 100, "Comida", "01/03/2024"), ErrMalformedDate},
	}
	for _, tc := range cases {
		if _, err := ledger.Post(1, tc.tx); !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}
}

func TestDeleteReversesExactly(t *testing.T) {
	ledger, store := newTestLedger(t)

	income := makeTransaction(1, models.TransactionIncome, "nequi", 100000, "Salario", "2024-03-05")
	expense := makeTransaction(2, models.TransactionExpense, "nequi", 50000, "Comida", "2024-03-10")
	if _, err := ledger.Post(1, income); err != nil {
		t.Fatalf("income post failed: %v", err)
	}
	if _, err := ledger.Post(1, expense); err != nil {
		t.Fatalf("expense post failed: %v", err)
	}

	if err := ledger.Delete(1, expense); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	aggregate := store.aggregates[1]
	if got := accountBalance(t, aggregate, "nequi"); !got.Equal(money(100000)) {
		t.Fatalf("expected nequi balance restored to 100000, got %s", got)
	}

	march := aggregate.MonthStats["2024-03"]
	if !march.Expense.IsZero() {
		t.Fatalf("expected month expense back to zero, got %s", march.Expense)
	}
	if _, still := march.Categories["Comida"]; still {
		t.Fatal("a category drained to zero must disappear")
	}

	if len(store.rows[1]) != 1 {
		t.Fatalf("expected 1 remaining row, got %d", len(store.rows[1]))
	}
}

func TestDeleteWithoutAggregate(t *testing.T) {
	ledger, _ := newTestLedger(t)

	tx := makeTransaction(1, models.TransactionExpense, "nequi", 100, "Comida", "2024-03-01")
	if err := ledger.Delete(1, tx); !errors.Is(err, ErrAggregateMissing) {
		t.Fatalf("expected ErrAggregateMissing, got %v", err)
	}
}

func TestPostRetriesThroughConflicts(t *testing.T) {
	ledger, store := newTestLedger(t)
	store.conflicts = 2

	if _, err := ledger.Post(1, makeTransaction(1, models.TransactionIncome, "nequi", 100, "Otros", "2024-03-01")); err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if len(store.rows[1]) != 1 {
		t.Fatalf("expected the row once, got %d", len(store.rows[1]))
	}
}

func TestPostGivesUpAfterRetryLimit(t *testing.T) {
	ledger, store := newTestLedger(t)
	store.conflicts = postRetryLimit

	_, err := ledger.Post(1, makeTransaction(1, models.TransactionIncome, "nequi", 100, "Otros", "2024-03-01"))
	if !errors.Is(err, ErrAggregateConflict) {
		t.Fatalf("expected ErrAggregateConflict, got %v", err)
	}
	if len(store.rows[1]) != 0 {
		t.Fatal("a failed post must not leave a row behind")
	}
}

func TestTransactionsPagination(t *testing.T) {
	ledger, store := newTestLedger(t)
	for id := int64(1); id <= 25; id++ {
		store.upsertRow(1, makeTransaction(id, models.TransactionIncome, "nequi", 100, "Otros", "2024-03-01"))
	}

	page, next, err := ledger.Transactions(1, "", 10)
	if err != nil {
		t.Fatalf("first page failed: %v", err)
	}
	if len(page) != 10 || page[0].ID != 25 || page[9].ID != 16 {
		t.Fatalf("unexpected first page: len %d ids %d..%d", len(page), page[0].ID, page[len(page)-1].ID)
	}
	if next != "16" {
		t.Fatalf("expected cursor 16, got %q", next)
	}

	page, next, err = ledger.Transactions(1, next, 10)
	if err != nil {
		t.Fatalf("second page failed: %v", err)
	}
	if len(page) != 10 || page[0].ID != 15 {
		t.Fatalf("unexpected second page: len %d first id %d", len(page), page[0].ID)
	}

	page, next, err = ledger.Transactions(1, next, 10)
	if err != nil {
		t.Fatalf("last page failed: %v", err)
	}
	if len(page) != 5 || next != "" {
		t.Fatalf("expected a short final page with no cursor, got len %d cursor %q", len(page), next)
	}
}

func TestTransactionsRejectsBadCursor(t *testing.T) {
	ledger, _ := newTestLedger(t)
	if _, _, err := ledger.Transactions(1, "not-a-number", 10); !errors.Is(err, ErrInvalidCursor) {
		t.Fatalf("expected ErrInvalidCursor, got %v", err)
	}
}

func TestAggregateSeedsDefaults(t *testing.T) {
	ledger, store := newTestLedger(t)
	store.aggregates[1] = models.FinanceAggregate{UserID: 1, Version: 3}

	aggregate, found, err := ledger.Aggregate(1)
	if err != nil || !found {
		t.Fatalf("expected the aggregate, found=%v err=%v", found, err)
	}
	if len(aggregate.Accounts) != 5 {
		t.Fatalf("expected the 5 default accounts, got %d", len(aggregate.Accounts))
	}
	if aggregate.MonthStats == nil {
		t.Fatal("month stats must never be nil")
	}
}

func TestLedgerConservation(t *testing.T) {
	ledger, store := newTestLedger(t)

	posts := []models.Transaction{
		makeTransaction(1, models.TransactionIncome, "nequi", 300, "Salario", "2024-01-10"),
		makeTransaction(2, models.TransactionExpense, "nequi", 120, "Comida", "2024-01-11"),
		makeTransaction(3, models.TransactionIncome, "efectivo", 80, "Otros", "2024-02-01"),
		makeTransaction(4, models.TransactionExpense, "efectivo", 30, "Transporte", "2024-02-02"),
	}
	for _, tx := range posts {
		if _, err := ledger.Post(1, tx); err != nil {
			t.Fatalf("post %d failed: %v", tx.ID, err)
		}
	}

	aggregate := store.aggregates[1]
	total := decimal.Zero
	for _, account := range aggregate.Accounts {
		total = total.Add(account.CurrentBalance().Sub(account.InitialBalance))
	}

	expected := money(300).Sub(money(120)).Add(money(80)).Sub(money(30))
	if !total.Equal(expected) {
		t.Fatalf("balance deltas %s must equal posted net %s", total, expected)
	}
}
