package db

import "gorm.io/gorm"

type Repositories struct {
	Users         *UserRepository
	Features      *FeatureRepository
	Ledger        *LedgerRepository
	MigrationRuns *MigrationRunRepository
}

func NewRepositories(database *gorm.DB) *Repositories {
	return &Repositories{
		Users:         NewUserRepository(database),
		Features:      NewFeatureRepository(database),
		Ledger:        NewLedgerRepository(database),
		MigrationRuns: NewMigrationRunRepository(database),
	}
}
