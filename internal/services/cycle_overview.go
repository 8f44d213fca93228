package services

import (
	"time"

	"github.com/niatrack/nia/internal/models"
)

type CycleOverview struct {
	Profile    models.CycleProfile     `json:"profile"`
	Phase      *PhaseInfo              `json:"phase,omitempty"`
	Prediction Prediction              `json:"prediction"`
	Regularity Regularity              `json:"regularity"`
	GymAdvice  string                  `json:"gymAdvice"`
	TodayEntry *models.DailyCycleEntry `json:"todayEntry,omitempty"`
}

// Overview assembles the dashboard view: date-derived phase with the manual
// override applied on top, predictions, regularity, and the advice for
// today's logged energy level.
func (service *ProfileService) Overview(userID uint, now time.Time) (CycleOverview, error) {
	document, err := service.LoadPeriod(userID)
	if err != nil {
		return CycleOverview{}, err
	}

	phase := CalculatePhase(document.CycleProfile, now, service.location)
	phase = ApplyManualOverride(phase, document.IsActive)

	overview := CycleOverview{
		Profile:    document.CycleProfile,
		Phase:      phase,
		Prediction: Predict(document.CycleProfile, now, service.location),
		Regularity: ClassifyRegularity(document.CycleLength),
	}

	today := TodayLocal(now, service.location)
	if entry, found := document.DailyEntries[today]; found {
		overview.TodayEntry = &entry
		overview.GymAdvice = SmartGymAdvice(phase, entry.Energy)
	} else {
		overview.GymAdvice = SmartGymAdvice(phase, "")
	}

	return overview, nil
}

// Insights drains the lazy insight sequence for API consumers.
func (service *ProfileService) Insights(userID uint) ([]Insight, error) {
	document, err := service.LoadPeriod(userID)
	if err != nil {
		return nil, err
	}

	collected := make([]Insight, 0, 4)
	for insight := range GenerateInsights(document.CycleProfile, document.DailyEntries) {
		collected = append(collected, insight)
	}
	return collected, nil
}
