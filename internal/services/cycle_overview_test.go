package services

import (
	"testing"

	"github.com/niatrack/nia/internal/models"
)

func TestOverviewAssemblesPhaseAndPrediction(t *testing.T) {
	service, _ := newTestProfileService()
	now := mustParseDay(t, "2024-01-03")

	if err := service.SaveCycleSettings(1, "2024-01-01", 28, 5, now); err != nil {
		t.Fatalf("settings failed: %v", err)
	}

	overview, err := service.Overview(1, now)
	if err != nil {
		t.Fatalf("overview failed: %v", err)
	}
	if overview.Phase == nil || overview.Phase.Name != PhaseMenstrual || overview.Phase.Day != 3 {
		t.Fatalf("expected Menstrual day 3, got %+v", overview.Phase)
	}
	if overview.Prediction.NextPeriod != "2024-01-29" {
		t.Fatalf("expected next period 2024-01-29, got %s", overview.Prediction.NextPeriod)
	}
	if overview.Regularity.Tier != RegularityRegular {
		t.Fatalf("expected regular tier, got %s", overview.Regularity.Tier)
	}
	if overview.GymAdvice != overview.Phase.GymAdvice {
		t.Fatalf("without a logged energy the phase advice applies, got %q", overview.GymAdvice)
	}
}

func TestOverviewManualOverrideForcesMenstrual(t *testing.T) {
	service, _ := newTestProfileService()
	now := mustParseDay(t, "2024-01-10")

	if err := service.SaveCycleSettings(1, "2024-01-01", 28, 5, now); err != nil {
		t.Fatalf("settings failed: %v", err)
	}
	if err := service.StartPeriod(1, "2024-01-01", now); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	overview, err := service.Overview(1, now)
	if err != nil {
		t.Fatalf("overview failed: %v", err)
	}
	// Day 10 is Follicular by date math, but the manual flag wins.
	if overview.Phase == nil || overview.Phase.Name != PhaseMenstrual {
		t.Fatalf("expected overridden Menstrual, got %+v", overview.Phase)
	}
	if overview.Phase.Day != 10 {
		t.Fatalf("override keeps the computed day, got %d", overview.Phase.Day)
	}
}

func TestOverviewTodayEnergyDrivesAdvice(t *testing.T) {
	service, _ := newTestProfileService()
	now := mustParseDay(t, "2024-01-10")

	if err := service.SaveCycleSettings(1, "2024-01-01", 28, 5, now); err != nil {
		t.Fatalf("settings failed: %v", err)
	}
	entry := models.DailyCycleEntry{Energy: models.EnergyAhorro}
	if _, err := service.UpsertDailyEntry(1, "2024-01-10", entry, now); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	overview, err := service.Overview(1, now)
	if err != nil {
		t.Fatalf("overview failed: %v", err)
	}
	if overview.TodayEntry == nil || overview.TodayEntry.Energy != models.EnergyAhorro {
		t.Fatalf("expected today's entry on the overview, got %+v", overview.TodayEntry)
	}

	level, _ := EnergyByID(models.EnergyAhorro)
	if overview.GymAdvice != level.GymAdvice {
		t.Fatalf("expected energy advice %q, got %q", level.GymAdvice, overview.GymAdvice)
	}
}

func TestInsightsEndpointDrainsSequence(t *testing.T) {
	service, _ := newTestProfileService()
	now := mustParseDay(t, "2024-01-10")

	if err := service.SaveCycleSettings(1, "2024-01-01", 28, 5, now); err != nil {
		t.Fatalf("settings failed: %v", err)
	}

	insights, err := service.Insights(1)
	if err != nil {
		t.Fatalf("insights failed: %v", err)
	}
	if len(insights) != 2 {
		t.Fatalf("expected average plus logging prompt, got %d", len(insights))
	}
}
