package models

const (
	FlowLight  = "light"
	FlowMedium = "medium"
	FlowHeavy  = "heavy"
)

const (
	EnergyAhorro  = "ahorro"
	EnergyPoco    = "poco"
	EnergyEstable = "estable"
	EnergyImpulso = "impulso"
	EnergyTope    = "tope"
)

const (
	ReliefHeat       = "heat"
	ReliefMedication = "medication"
	ReliefExercise   = "exercise"
)

// SymptomCramps is the symptom identifier the insight engine treats as cramps.
const SymptomCramps = "colicos"

const (
	DefaultCycleLength  = 28
	DefaultPeriodLength = 5
)

// CycleProfile is the per-user singleton describing the recurring cycle.
// AnchorDate is the first day of a known bleed (YYYY-MM-DD); IsActive is a
// manual flag that forces the menstrual phase regardless of date arithmetic.
type CycleProfile struct {
	AnchorDate   string `json:"cycleStartDate"`
	CycleLength  int    `json:"cycleLength"`
	PeriodLength int    `json:"periodLength"`
	IsActive     bool   `json:"isPeriodActive"`
}

// DailyCycleEntry is one day's log, keyed by its ISO date. HasBled is
// tri-state: nil means the day was never answered.
type DailyCycleEntry struct {
	Date          string   `json:"date"`
	HasBled       *bool    `json:"hasBled,omitempty"`
	Flow          string   `json:"flow,omitempty"`
	Energy        string   `json:"energy,omitempty"`
	Symptoms      []string `json:"symptoms,omitempty"`
	PainLevel     int      `json:"painLevel,omitempty"`
	ReliefMethods []string `json:"reliefMethods,omitempty"`
	MoodLabel     string   `json:"moodLabel,omitempty"`
	MoodEmoji     string   `json:"moodEmoji,omitempty"`
}

// Bled reports whether the day was answered with a bleed.
func (entry DailyCycleEntry) Bled() bool {
	return entry.HasBled != nil && *entry.HasBled
}

// PeriodDocument is the stored shape of the "period" feature document.
type PeriodDocument struct {
	CycleProfile
	DailyEntries map[string]DailyCycleEntry `json:"dailyEntries"`
}

// NewPeriodDocument returns the document used when a user has no stored data.
func NewPeriodDocument() PeriodDocument {
	return PeriodDocument{
		CycleProfile: CycleProfile{
			CycleLength:  DefaultCycleLength,
			PeriodLength: DefaultPeriodLength,
		},
		DailyEntries: map[string]DailyCycleEntry{},
	}
}
