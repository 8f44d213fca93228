package db

import (
	"gorm.io/gorm"

	"github.com/niatrack/nia/internal/models"
)

type MigrationRunRepository struct {
	database *gorm.DB
}

func NewMigrationRunRepository(database *gorm.DB) *MigrationRunRepository {
	return &MigrationRunRepository{database: database}
}

// ActiveRun returns the user's unfinished run, if any, so an interrupted
// import resumes instead of restarting.
func (repo *MigrationRunRepository) ActiveRun(userID uint) (models.MigrationRun, bool, error) {
	run := models.MigrationRun{}
	result := repo.database.
		Where("user_id = ? AND completed = ?", userID, false).
		Order("created_at DESC").
		Limit(1).
		Find(&run)
	if result.Error != nil {
		return models.MigrationRun{}, false, result.Error
	}
	if result.RowsAffected == 0 {
		return models.MigrationRun{}, false, nil
	}
	return run, true, nil
}

func (repo *MigrationRunRepository) SaveRun(run *models.MigrationRun) error {
	return repo.database.Save(run).Error
}
