package services

import (
	"errors"
	"time"

	"github.com/niatrack/nia/internal/models"
)

var (
	ErrPeriodLoadFailed = errors.New("load period document failed")
	ErrPeriodSaveFailed = errors.New("save period document failed")

	ErrAnchorRequired      = errors.New("cycle anchor date is required")
	ErrInvalidAnchorDate   = errors.New("cycle anchor date is malformed")
	ErrAnchorInFuture      = errors.New("cycle anchor date is in the future")
	ErrInvalidCycleLength  = errors.New("cycle length out of range")
	ErrInvalidPeriodLength = errors.New("period length out of range")
	ErrInvalidEntryDate    = errors.New("entry date is malformed")
	ErrInvalidFlow         = errors.New("unknown flow level")
	ErrInvalidEnergy       = errors.New("unknown energy level")
	ErrInvalidPainLevel    = errors.New("pain level out of range")
	ErrNoActivePeriod      = errors.New("no active period to end")
)

const (
	minCycleLength  = 21
	maxCycleLength  = 40
	minPeriodLength = 2
	maxPeriodLength = 10

	// A bleed this many days after the previous one starts a new cycle.
	newCycleGapDays = 15

	// Observed period length is clamped here when an active period ends.
	minObservedPeriod = 1
	maxObservedPeriod = 20
)

// FeatureStore is the generic per-feature document contract. Load decodes the
// stored document into out and reports whether one existed; Save
// shallow-merges the partial update's top-level keys onto the stored
// document, replacing array-valued fields wholesale.
type FeatureStore interface {
	Load(userID uint, feature string, out any) (bool, error)
	Save(userID uint, feature string, partial any) error
}

// ProfileService owns the cycle profile and daily-entry document. This tier
// is last-write-wins: a single user is not expected to edit the same day from
// two clients at once, so it rides the plain feature store without the
// finance aggregate's guard.
type ProfileService struct {
	features FeatureStore
	location *time.Location
}

func NewProfileService(features FeatureStore, location *time.Location) *ProfileService {
	if location == nil {
		location = time.UTC
	}
	return &ProfileService{features: features, location: location}
}

func (service *ProfileService) LoadPeriod(userID uint) (models.PeriodDocument, error) {
	document := models.NewPeriodDocument()
	found, err := service.features.Load(userID, models.FeaturePeriod, &document)
	if err != nil {
		return models.PeriodDocument{}, ErrPeriodLoadFailed
	}
	if !found {
		return models.NewPeriodDocument(), nil
	}
	if document.DailyEntries == nil {
		document.DailyEntries = map[string]models.DailyCycleEntry{}
	}
	if document.CycleLength <= 0 {
		document.CycleLength = models.DefaultCycleLength
	}
	if document.PeriodLength <= 0 {
		document.PeriodLength = models.DefaultPeriodLength
	}
	return document, nil
}

// SaveCycleSettings replaces the anchor date and the cycle parameters.
func (service *ProfileService) SaveCycleSettings(userID uint, anchorDate string, cycleLength int, periodLength int, now time.Time) error {
	if err := service.validateAnchor(anchorDate, now); err != nil {
		return err
	}
	if cycleLength < minCycleLength || cycleLength > maxCycleLength {
		return ErrInvalidCycleLength
	}
	if periodLength < minPeriodLength || periodLength > maxPeriodLength || periodLength > cycleLength {
		return ErrInvalidPeriodLength
	}

	partial := map[string]any{
		"cycleStartDate": anchorDate,
		"cycleLength":    cycleLength,
		"periodLength":   periodLength,
	}
	if err := service.features.Save(userID, models.FeaturePeriod, partial); err != nil {
		return ErrPeriodSaveFailed
	}
	return nil
}

// StartPeriod records a new bleed start: the anchor moves to the given date
// and the manual period flag turns on.
func (service *ProfileService) StartPeriod(userID uint, date string, now time.Time) error {
	if err := service.validateAnchor(date, now); err != nil {
		return err
	}
	partial := map[string]any{
		"cycleStartDate": date,
		"isPeriodActive": true,
	}
	if err := service.features.Save(userID, models.FeaturePeriod, partial); err != nil {
		return ErrPeriodSaveFailed
	}
	return nil
}

// EndActivePeriod turns the manual flag off and adopts the observed bleed
// duration (anchor through today, clamped to [1,20]) as the new period length.
func (service *ProfileService) EndActivePeriod(userID uint, now time.Time) (int, error) {
	document, err := service.LoadPeriod(userID)
	if err != nil {
		return 0, err
	}
	if !document.IsActive || document.AnchorDate == "" {
		return 0, ErrNoActivePeriod
	}

	anchor, err := ParseISODate(document.AnchorDate, service.location)
	if err != nil {
		return 0, ErrInvalidAnchorDate
	}
	observed := DaysBetween(anchor, now, service.location) + 1
	if observed < minObservedPeriod {
		observed = minObservedPeriod
	}
	if observed > maxObservedPeriod {
		observed = maxObservedPeriod
	}

	partial := map[string]any{
		"isPeriodActive": false,
		"periodLength":   observed,
	}
	if err := service.features.Save(userID, models.FeaturePeriod, partial); err != nil {
		return 0, ErrPeriodSaveFailed
	}
	return observed, nil
}

// UpsertDailyEntry stores one day's log, overwriting any previous entry for
// that date. A no-bleed answer clears the bleed-only fields. When the bleed
// follows a gap of more than 15 days since the last logged bleed (or no bleed
// was ever logged), the anchor moves to this date: a new cycle has started.
func (service *ProfileService) UpsertDailyEntry(userID uint, date string, entry models.DailyCycleEntry, now time.Time) (models.DailyCycleEntry, error) {
	day, err := ParseISODate(date, service.location)
	if err != nil {
		return models.DailyCycleEntry{}, ErrInvalidEntryDate
	}
	if err := validateDailyEntry(entry); err != nil {
		return models.DailyCycleEntry{}, err
	}

	entry.Date = date
	if !entry.Bled() {
		entry.Flow = ""
		entry.PainLevel = 0
		entry.ReliefMethods = []string{}
		entry.Symptoms = []string{}
	}
	if entry.Symptoms == nil {
		entry.Symptoms = []string{}
	}
	if entry.ReliefMethods == nil {
		entry.ReliefMethods = []string{}
	}

	document, err := service.LoadPeriod(userID)
	if err != nil {
		return models.DailyCycleEntry{}, err
	}
	document.DailyEntries[date] = entry

	partial := map[string]any{
		"dailyEntries": document.DailyEntries,
	}
	if entry.Bled() {
		if anchor, shifted := service.shiftedAnchor(document, date, day); shifted {
			partial["cycleStartDate"] = anchor
		}
	}

	if err := service.features.Save(userID, models.FeaturePeriod, partial); err != nil {
		return models.DailyCycleEntry{}, ErrPeriodSaveFailed
	}
	return entry, nil
}

func (service *ProfileService) DailyEntry(userID uint, date string) (models.DailyCycleEntry, bool, error) {
	document, err := service.LoadPeriod(userID)
	if err != nil {
		return models.DailyCycleEntry{}, false, err
	}
	entry, found := document.DailyEntries[date]
	return entry, found, nil
}

func (service *ProfileService) shiftedAnchor(document models.PeriodDocument, date string, day time.Time) (string, bool) {
	lastBleed := ""
	for entryDate, entry := range document.DailyEntries {
		if entryDate >= date || !entry.Bled() {
			continue
		}
		if entryDate > lastBleed {
			lastBleed = entryDate
		}
	}
	if lastBleed == "" {
		return date, true
	}

	previous, err := ParseISODate(lastBleed, service.location)
	if err != nil {
		return date, true
	}
	if DaysBetween(previous, day, service.location) > newCycleGapDays {
		return date, true
	}
	return "", false
}

func (service *ProfileService) validateAnchor(anchorDate string, now time.Time) error {
	if anchorDate == "" {
		return ErrAnchorRequired
	}
	anchor, err := ParseISODate(anchorDate, service.location)
	if err != nil {
		return ErrInvalidAnchorDate
	}
	if DaysBetween(anchor, now, service.location) < 0 {
		return ErrAnchorInFuture
	}
	return nil
}

func validateDailyEntry(entry models.DailyCycleEntry) error {
	switch entry.Flow {
	case "", models.FlowLight, models.FlowMedium, models.FlowHeavy:
	default:
		return ErrInvalidFlow
	}
	if entry.Energy != "" {
		if _, found := EnergyByID(entry.Energy); !found {
			return ErrInvalidEnergy
		}
	}
	if entry.PainLevel < 0 || entry.PainLevel > 10 {
		return ErrInvalidPainLevel
	}
	return nil
}
