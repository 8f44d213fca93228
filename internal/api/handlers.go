package api

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/niatrack/nia/internal/db"
	"github.com/niatrack/nia/internal/models"
	"github.com/niatrack/nia/internal/services"
)

type Handler struct {
	users        *db.UserRepository
	ledgerRepo   *db.LedgerRepository
	profile      *services.ProfileService
	ledger       *services.LedgerService
	migrator     *services.MigrationService
	secretKey    []byte
	location     *time.Location
	cookieSecure bool
}

func NewHandler(database *gorm.DB, secretKey string, location *time.Location, cookieSecure bool) *Handler {
	repos := db.NewRepositories(database)
	return &Handler{
		users:        repos.Users,
		ledgerRepo:   repos.Ledger,
		profile:      services.NewProfileService(repos.Features, location),
		ledger:       services.NewLedgerService(repos.Ledger),
		migrator:     services.NewMigrationService(repos.Ledger, repos.MigrationRuns),
		secretKey:    []byte(secretKey),
		location:     location,
		cookieSecure: cookieSecure,
	}
}

const (
	defaultAuthTokenTTL  = 7 * 24 * time.Hour
	rememberAuthTokenTTL = 30 * 24 * time.Hour
)

type credentialsInput struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	RememberMe bool   `json:"remember_me"`
}

type cycleSettingsInput struct {
	CycleStartDate string `json:"cycleStartDate"`
	CycleLength    int    `json:"cycleLength"`
	PeriodLength   int    `json:"periodLength"`
}

type periodStartInput struct {
	Date string `json:"date"`
}

type dailyEntryInput struct {
	HasBled       *bool    `json:"hasBled"`
	Flow          string   `json:"flow"`
	Energy        string   `json:"energy"`
	Symptoms      []string `json:"symptoms"`
	PainLevel     int      `json:"painLevel"`
	ReliefMethods []string `json:"reliefMethods"`
	MoodLabel     string   `json:"moodLabel"`
	MoodEmoji     string   `json:"moodEmoji"`
}

type transactionInput struct {
	Type        string          `json:"type"`
	AccountID   string          `json:"accountId"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Emoji       string          `json:"emoji"`
	Description string          `json:"description"`
	DateISO     string          `json:"dateISO"`
	Date        string          `json:"date"`
}

func (input transactionInput) toModel() models.Transaction {
	return models.Transaction{
		Type:        input.Type,
		AccountID:   input.AccountID,
		Amount:      input.Amount,
		Category:    input.Category,
		Emoji:       input.Emoji,
		Description: input.Description,
		DateISO:     input.DateISO,
		Date:        input.Date,
	}
}
