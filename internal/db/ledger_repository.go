package db

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/niatrack/nia/internal/models"
	"github.com/niatrack/nia/internal/services"
)

// LedgerRepository implements services.LedgerStore over sqlite. RunAtomic
// wraps one database transaction; the aggregate save carries an optimistic
// version check, so a concurrent writer rolls the whole unit back with
// services.ErrAggregateConflict instead of interleaving.
type LedgerRepository struct {
	database *gorm.DB
}

func NewLedgerRepository(database *gorm.DB) *LedgerRepository {
	return &LedgerRepository{database: database}
}

func (repo *LedgerRepository) RunAtomic(userID uint, fn func(unit services.LedgerUnit) error) error {
	return repo.database.Transaction(func(tx *gorm.DB) error {
		return fn(&ledgerUnit{tx: tx, userID: userID})
	})
}

func (repo *LedgerRepository) LoadAggregate(userID uint) (models.FinanceAggregate, bool, error) {
	return loadAggregate(repo.database, userID)
}

// FindTransaction loads one posted row, so a delete can reverse the exact
// amounts that were applied.
func (repo *LedgerRepository) FindTransaction(userID uint, id int64) (models.Transaction, bool, error) {
	tx := models.Transaction{}
	result := repo.database.Where("user_id = ? AND id = ?", userID, id).Limit(1).Find(&tx)
	if result.Error != nil {
		return models.Transaction{}, false, result.Error
	}
	if result.RowsAffected == 0 {
		return models.Transaction{}, false, nil
	}
	return tx, true, nil
}

func (repo *LedgerRepository) ListPage(userID uint, cursor int64, pageSize int) ([]models.Transaction, error) {
	query := repo.database.Where("user_id = ?", userID)
	if cursor > 0 {
		query = query.Where("id < ?", cursor)
	}

	page := make([]models.Transaction, 0, pageSize)
	if err := query.Order("id DESC").Limit(pageSize).Find(&page).Error; err != nil {
		return nil, err
	}
	return page, nil
}

func (repo *LedgerRepository) ListAll(userID uint) ([]models.Transaction, error) {
	transactions := make([]models.Transaction, 0)
	if err := repo.database.Where("user_id = ?", userID).Order("id ASC").Find(&transactions).Error; err != nil {
		return nil, err
	}
	return transactions, nil
}

// InsertBatch upserts, so a resumed migration may safely re-write rows an
// interrupted attempt already inserted.
func (repo *LedgerRepository) InsertBatch(userID uint, batch []models.Transaction) error {
	if len(batch) == 0 {
		return nil
	}
	rows := make([]models.Transaction, len(batch))
	copy(rows, batch)
	for index := range rows {
		rows[index].UserID = userID
	}
	return repo.database.Clauses(clause.OnConflict{UpdateAll: true}).Create(&rows).Error
}

type ledgerUnit struct {
	tx            *gorm.DB
	userID        uint
	loadedVersion int64
	loadedFound   bool
	loaded        bool
}

func (unit *ledgerUnit) Aggregate() (models.FinanceAggregate, bool, error) {
	aggregate, found, err := loadAggregate(unit.tx, unit.userID)
	if err != nil {
		return models.FinanceAggregate{}, false, err
	}
	unit.loadedVersion = aggregate.Version
	unit.loadedFound = found
	unit.loaded = true
	return aggregate, found, nil
}

func (unit *ledgerUnit) SaveAggregate(aggregate *models.FinanceAggregate) error {
	aggregate.UserID = unit.userID

	if !unit.loaded || !unit.loadedFound {
		aggregate.Version = 1
		if err := unit.tx.Create(aggregate).Error; err != nil {
			// A concurrent first post already created the row.
			return services.ErrAggregateConflict
		}
		return nil
	}

	aggregate.Version = unit.loadedVersion + 1
	result := unit.tx.Model(&models.FinanceAggregate{}).
		Where("user_id = ? AND version = ?", unit.userID, unit.loadedVersion).
		Select("Accounts", "MonthStats", "LegacyTransactions", "Version", "UpdatedAt").
		Updates(aggregate)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return services.ErrAggregateConflict
	}
	return nil
}

func (unit *ledgerUnit) InsertTransaction(tx *models.Transaction) error {
	tx.UserID = unit.userID
	return unit.tx.Create(tx).Error
}

func (unit *ledgerUnit) RemoveTransaction(id int64) error {
	return unit.tx.Where("user_id = ? AND id = ?", unit.userID, id).Delete(&models.Transaction{}).Error
}

func loadAggregate(tx *gorm.DB, userID uint) (models.FinanceAggregate, bool, error) {
	aggregate := models.FinanceAggregate{}
	result := tx.Where("user_id = ?", userID).Limit(1).Find(&aggregate)
	if result.Error != nil {
		return models.FinanceAggregate{}, false, result.Error
	}
	if result.RowsAffected == 0 {
		return models.FinanceAggregate{}, false, nil
	}
	return aggregate, true, nil
}
