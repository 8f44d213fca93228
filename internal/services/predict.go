package services

import (
	"time"

	"github.com/niatrack/nia/internal/models"
)

// lutealPhaseDays is the fixed tail assumed for every cycle length. A
// simplifying convention, not a medical model.
const lutealPhaseDays = 14

const fertileWindowLead = 4

type Prediction struct {
	NextPeriod         string `json:"nextPeriod,omitempty"`
	FertileWindowStart string `json:"fertileWindowStart,omitempty"`
	FertileWindowEnd   string `json:"fertileWindowEnd,omitempty"`
}

// Predict projects the next period start and the fertile window from the
// anchored cycle. All fields are empty when no anchor is set.
//
// The ovulation day is cycleLength−14 expressed as a 1-based day-in-cycle;
// the window spans day ovulationDay−4 through ovulationDay+1 of the cycle
// containing today.
func Predict(profile models.CycleProfile, today time.Time, location *time.Location) Prediction {
	if profile.AnchorDate == "" {
		return Prediction{}
	}
	anchor, err := ParseISODate(profile.AnchorDate, location)
	if err != nil {
		return Prediction{}
	}

	cycleLength := profile.CycleLength
	if cycleLength <= 0 {
		cycleLength = models.DefaultCycleLength
	}

	diff := DaysBetween(anchor, today, location)
	cyclesElapsed := floorDiv(diff, cycleLength)

	nextPeriod := anchor.AddDate(0, 0, (cyclesElapsed+1)*cycleLength)
	prediction := Prediction{NextPeriod: FormatISODate(nextPeriod)}

	ovulationDay := cycleLength - lutealPhaseDays
	if ovulationDay-fertileWindowLead < 1 {
		return prediction
	}

	cycleStart := anchor.AddDate(0, 0, cyclesElapsed*cycleLength)
	prediction.FertileWindowStart = FormatISODate(cycleStart.AddDate(0, 0, ovulationDay-fertileWindowLead-1))
	prediction.FertileWindowEnd = FormatISODate(cycleStart.AddDate(0, 0, ovulationDay))
	return prediction
}

func floorDiv(a int, b int) int {
	quotient := a / b
	if a%b < 0 {
		quotient--
	}
	return quotient
}
