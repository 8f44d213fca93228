package services

import (
	"fmt"
	"iter"

	"github.com/niatrack/nia/internal/models"
)

const (
	RegularityRegular   = "regular"
	RegularityVarying   = "varying"
	RegularityIrregular = "irregular"
)

type Regularity struct {
	Tier        string `json:"tier"`
	Label       string `json:"label"`
	Severity    string `json:"severity"`
	Description string `json:"description"`
}

// ClassifyRegularity buckets a cycle length into the tri-state signal:
// [26,30] regular, the rest of [21,35] varying, everything else irregular.
func ClassifyRegularity(cycleLengthDays int) Regularity {
	switch {
	case cycleLengthDays >= 26 && cycleLengthDays <= 30:
		return Regularity{
			Tier:        RegularityRegular,
			Label:       "Regular",
			Severity:    "green",
			Description: "Your cycle length sits in the most common range.",
		}
	case cycleLengthDays >= 21 && cycleLengthDays <= 35:
		return Regularity{
			Tier:        RegularityVarying,
			Label:       "Varying",
			Severity:    "amber",
			Description: "Your cycle length is within normal limits but varies.",
		}
	default:
		return Regularity{
			Tier:        RegularityIrregular,
			Label:       "Irregular",
			Severity:    "red",
			Description: "Your cycle length is outside the typical range.",
		}
	}
}

const crampPainThreshold = 5

const (
	InsightCycleAverage = "cycle_average"
	InsightCrampPattern = "cramp_pattern"
	InsightReliefAdvice = "relief_recommendation"
	InsightKeepLogging  = "keep_logging"
)

type Insight struct {
	Kind string `json:"kind"`
	Text string `json:"text"`
}

var reliefLabels = map[string]string{
	models.ReliefHeat:       "Heat",
	models.ReliefMedication: "Medication",
	models.ReliefExercise:   "Exercise",
}

// GenerateInsights yields short observations derived from the profile and the
// daily entries. The sequence is lazy and finite: the average cycle length
// comes first when known, a cramp pattern note plus the most logged relief
// method follow when any qualifying entry exists, and a generic logging
// prompt closes the sequence when nothing symptom-driven was produced.
//
// Ties between relief methods resolve in a fixed order: heat, then
// medication, then exercise. The first-compared candidate wins, which is an
// observable part of the contract.
func GenerateInsights(profile models.CycleProfile, entries map[string]models.DailyCycleEntry) iter.Seq[Insight] {
	return func(yield func(Insight) bool) {
		if profile.CycleLength > 0 {
			average := Insight{
				Kind: InsightCycleAverage,
				Text: fmt.Sprintf("Your average cycle length is %d days.", profile.CycleLength),
			}
			if !yield(average) {
				return
			}
		}

		crampDays := 0
		reliefCounts := map[string]int{}
		for _, entry := range entries {
			if hasCramps(entry) {
				crampDays++
			}
			for _, method := range entry.ReliefMethods {
				reliefCounts[method]++
			}
		}

		if crampDays == 0 {
			yield(Insight{
				Kind: InsightKeepLogging,
				Text: "Keep logging your days to unlock personal insights.",
			})
			return
		}

		pattern := Insight{
			Kind: InsightCrampPattern,
			Text: fmt.Sprintf("Cramps showed up on %d logged days, usually early in your menstrual phase.", crampDays),
		}
		if !yield(pattern) {
			return
		}

		best, count := mostLoggedRelief(reliefCounts)
		if count > 0 {
			yield(Insight{
				Kind: InsightReliefAdvice,
				Text: fmt.Sprintf("%s has helped you most often. Keep it close on heavy days.", reliefLabels[best]),
			})
		}
	}
}

func hasCramps(entry models.DailyCycleEntry) bool {
	if entry.PainLevel >= crampPainThreshold {
		return true
	}
	for _, symptom := range entry.Symptoms {
		if symptom == models.SymptomCramps {
			return true
		}
	}
	return false
}

// mostLoggedRelief compares in the contract order so that exact ties keep the
// first-compared method.
func mostLoggedRelief(counts map[string]int) (string, int) {
	order := []string{models.ReliefHeat, models.ReliefMedication, models.ReliefExercise}
	best := order[0]
	bestCount := counts[best]
	for _, method := range order[1:] {
		if counts[method] > bestCount {
			best = method
			bestCount = counts[method]
		}
	}
	return best, bestCount
}
