package services

import (
	"fmt"
	"time"

	"github.com/niatrack/nia/internal/models"
)

type Phase string

const (
	PhaseMenstrual  Phase = "Menstrual"
	PhaseFollicular Phase = "Follicular"
	PhaseOvulation  Phase = "Ovulation"
	PhaseLuteal     Phase = "Luteal"
)

type PhaseInfo struct {
	Name        Phase  `json:"name"`
	Day         int    `json:"day"`
	Description string `json:"description"`
	GymAdvice   string `json:"gymAdvice"`
	Icon        string `json:"icon"`
}

const (
	menstrualGymAdvice  = "Restorative yoga or a light walk."
	follicularGymAdvice = "Cardio and progressive strength."
	ovulationGymAdvice  = "Go all in: HIIT or max strength."
	lutealGymAdvice     = "Moderate strength, lower the intensity near the end."
)

// CalculatePhase classifies today within the cycle anchored at the profile's
// anchor date. Returns nil when the anchor is unset, malformed or in the
// future. The day-in-cycle wraps cyclically, so the result is defined for any
// date at or after the anchor.
func CalculatePhase(profile models.CycleProfile, today time.Time, location *time.Location) *PhaseInfo {
	if profile.AnchorDate == "" {
		return nil
	}
	anchor, err := ParseISODate(profile.AnchorDate, location)
	if err != nil {
		return nil
	}

	diff := DaysBetween(anchor, today, location)
	if diff < 0 {
		return nil
	}

	cycleLength := profile.CycleLength
	if cycleLength <= 0 {
		cycleLength = models.DefaultCycleLength
	}
	periodLength := profile.PeriodLength
	if periodLength <= 0 {
		periodLength = models.DefaultPeriodLength
	}

	day := (diff % cycleLength) + 1
	info := PhaseInfo{Day: day}

	switch {
	case day <= periodLength:
		info.Name = PhaseMenstrual
		info.Description = fmt.Sprintf("Day %d. Rest and take it easy.", day)
		info.GymAdvice = menstrualGymAdvice
		info.Icon = "🩸"
	case day <= 11:
		info.Name = PhaseFollicular
		info.Description = "Energy on the rise. Good time to build."
		info.GymAdvice = follicularGymAdvice
		info.Icon = "🌱"
	case day <= 16:
		info.Name = PhaseOvulation
		info.Description = "Peak energy and confidence today."
		info.GymAdvice = ovulationGymAdvice
		info.Icon = "🌸"
	default:
		info.Name = PhaseLuteal
		info.Description = fmt.Sprintf("Winding down. Your period arrives in ~%d days.", cycleLength-day)
		info.GymAdvice = lutealGymAdvice
		info.Icon = "🍂"
	}

	return &info
}

// ApplyManualOverride merges the manually toggled period flag onto a computed
// phase. The flag always wins: when a bleed outlasts the historical period
// length the date math says Follicular, but the user knows better.
// Kept separate from CalculatePhase so both stay independently testable.
func ApplyManualOverride(info *PhaseInfo, isActive bool) *PhaseInfo {
	if info == nil || !isActive || info.Name == PhaseMenstrual {
		return info
	}
	overridden := *info
	overridden.Name = PhaseMenstrual
	overridden.Description = "Period active."
	overridden.GymAdvice = menstrualGymAdvice
	overridden.Icon = "🩸"
	return &overridden
}

type EnergyConfig struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Emoji       string `json:"emoji"`
	Description string `json:"description"`
	GymAdvice   string `json:"gymAdvice"`
}

// EnergyLevels is the ordered 5-point scale. When a day's entry carries one of
// these, its advice supersedes the phase default.
var EnergyLevels = []EnergyConfig{
	{
		ID:          models.EnergyAhorro,
		Label:       "Battery saver",
		Emoji:       "🪫",
		Description: "Exhaustion, brain fog or pain.",
		GymAdvice:   "Full rest or gentle stretching.",
	},
	{
		ID:          models.EnergyPoco,
		Label:       "Little by little",
		Emoji:       "📉",
		Description: "Heaviness, low motivation.",
		GymAdvice:   "Yoga, a walk or mobility work.",
	},
	{
		ID:          models.EnergyEstable,
		Label:       "Steady",
		Emoji:       "🆗",
		Description: "Functional, normal.",
		GymAdvice:   "Standard routine, without overreaching.",
	},
	{
		ID:          models.EnergyImpulso,
		Label:       "On a roll",
		Emoji:       "📈",
		Description: "Good energy, clear mind.",
		GymAdvice:   "Cardio or moderate strength.",
	},
	{
		ID:          models.EnergyTope,
		Label:       "Full power",
		Emoji:       "⚡",
		Description: "Unstoppable, high confidence.",
		GymAdvice:   "Personal records or intense HIIT.",
	},
}

func EnergyByID(id string) (EnergyConfig, bool) {
	for _, level := range EnergyLevels {
		if level.ID == id {
			return level, true
		}
	}
	return EnergyConfig{}, false
}

// SmartGymAdvice resolves the advice shown for a day: a known energy level
// wins, then the phase default, then a generic fallback.
func SmartGymAdvice(info *PhaseInfo, energy string) string {
	if level, found := EnergyByID(energy); found {
		return level.GymAdvice
	}
	if info != nil {
		return info.GymAdvice
	}
	return "Listen to your body."
}
