package services

import (
	"testing"

	"github.com/niatrack/nia/internal/models"
)

func TestClassifyRegularityTiers(t *testing.T) {
	cases := []struct {
		length int
		tier   string
	}{
		{26, RegularityRegular},
		{28, RegularityRegular},
		{30, RegularityRegular},
		{21, RegularityVarying},
		{25, RegularityVarying},
		{31, RegularityVarying},
		{35, RegularityVarying},
		{20, RegularityIrregular},
		{36, RegularityIrregular},
		{0, RegularityIrregular},
	}
	for _, tc := range cases {
		if got := ClassifyRegularity(tc.length); got.Tier != tc.tier {
			t.Fatalf("length %d: expected %s, got %s", tc.length, tc.tier, got.Tier)
		}
	}
}

func collectInsights(profile models.CycleProfile, entries map[string]models.DailyCycleEntry) []Insight {
	collected := []Insight{}
	for insight := range GenerateInsights(profile, entries) {
		collected = append(collected, insight)
	}
	return collected
}

func boolPtr(value bool) *bool { return &value }

func TestGenerateInsightsWithoutCramps(t *testing.T) {
	profile := testProfile("2024-01-01", 28, 5)
	entries := map[string]models.DailyCycleEntry{
		"2024-01-01": {Date: "2024-01-01", HasBled: boolPtr(true), PainLevel: 2},
	}

	insights := collectInsights(profile, entries)
	if len(insights) != 2 {
		t.Fatalf("expected 2 insights, got %d", len(insights))
	}
	if insights[0].Kind != InsightCycleAverage {
		t.Fatalf("expected the average first, got %s", insights[0].Kind)
	}
	if insights[1].Kind != InsightKeepLogging {
		t.Fatalf("expected the logging prompt, got %s", insights[1].Kind)
	}
}

func TestGenerateInsightsCrampsBySymptom(t *testing.T) {
	profile := testProfile("2024-01-01", 28, 5)
	entries := map[string]models.DailyCycleEntry{
		"2024-01-01": {HasBled: boolPtr(true), Symptoms: []string{models.SymptomCramps}, ReliefMethods: []string{models.ReliefHeat}},
		"2024-01-02": {HasBled: boolPtr(true), Symptoms: []string{models.SymptomCramps}, ReliefMethods: []string{models.ReliefHeat, models.ReliefMedication}},
	}

	insights := collectInsights(profile, entries)
	if len(insights) != 3 {
		t.Fatalf("expected 3 insights, got %d", len(insights))
	}
	if insights[1].Kind != InsightCrampPattern {
		t.Fatalf("expected a cramp pattern, got %s", insights[1].Kind)
	}
	if insights[2].Kind != InsightReliefAdvice {
		t.Fatalf("expected a relief recommendation, got %s", insights[2].Kind)
	}
}

func TestGenerateInsightsCrampsByPainLevel(t *testing.T) {
	profile := testProfile("2024-01-01", 28, 5)
	entries := map[string]models.DailyCycleEntry{
		"2024-01-01": {HasBled: boolPtr(true), PainLevel: 5},
	}

	insights := collectInsights(profile, entries)
	if len(insights) < 2 || insights[1].Kind != InsightCrampPattern {
		t.Fatalf("pain level 5 must count as cramps, got %+v", insights)
	}
}

func TestMostLoggedReliefTieBreak(t *testing.T) {
	counts := map[string]int{
		models.ReliefHeat:       2,
		models.ReliefMedication: 2,
		models.ReliefExercise:   2,
	}
	if best, _ := mostLoggedRelief(counts); best != models.ReliefHeat {
		t.Fatalf("exact tie must keep heat, got %s", best)
	}

	counts[models.ReliefExercise] = 3
	if best, _ := mostLoggedRelief(counts); best != models.ReliefExercise {
		t.Fatalf("strict maximum must win, got %s", best)
	}
}

func TestGenerateInsightsLazyStop(t *testing.T) {
	profile := testProfile("2024-01-01", 28, 5)
	entries := map[string]models.DailyCycleEntry{
		"2024-01-01": {HasBled: boolPtr(true), PainLevel: 7, ReliefMethods: []string{models.ReliefHeat}},
	}

	seen := 0
	for range GenerateInsights(profile, entries) {
		seen++
		break
	}
	if seen != 1 {
		t.Fatalf("expected the consumer to stop after one insight, saw %d", seen)
	}
}
