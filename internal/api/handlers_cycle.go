package api

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/niatrack/nia/internal/models"
)

func (handler *Handler) CycleOverview(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	overview, err := handler.profile.Overview(user.ID, time.Now())
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(overview)
}

func (handler *Handler) GetCycleProfile(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	document, err := handler.profile.LoadPeriod(user.ID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(document)
}

func (handler *Handler) SaveCycleSettings(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	input := cycleSettingsInput{}
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid request body")
	}

	err := handler.profile.SaveCycleSettings(user.ID, input.CycleStartDate, input.CycleLength, input.PeriodLength, time.Now())
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"ok": true})
}

func (handler *Handler) StartPeriod(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	input := periodStartInput{}
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid request body")
	}

	if err := handler.profile.StartPeriod(user.ID, input.Date, time.Now()); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"ok": true})
}

func (handler *Handler) EndPeriod(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	observedLength, err := handler.profile.EndActivePeriod(user.ID, time.Now())
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"observedPeriodLength": observedLength})
}

func (handler *Handler) GetDailyEntry(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	entry, found, err := handler.profile.DailyEntry(user.ID, c.Params("date"))
	if err != nil {
		return serviceError(c, err)
	}
	if !found {
		return apiError(c, fiber.StatusNotFound, "no entry for that date")
	}
	return c.JSON(entry)
}

func (handler *Handler) UpsertDailyEntry(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	input := dailyEntryInput{}
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid request body")
	}

	entry := models.DailyCycleEntry{
		HasBled:       input.HasBled,
		Flow:          input.Flow,
		Energy:        input.Energy,
		Symptoms:      input.Symptoms,
		PainLevel:     input.PainLevel,
		ReliefMethods: input.ReliefMethods,
		MoodLabel:     input.MoodLabel,
		MoodEmoji:     input.MoodEmoji,
	}

	saved, err := handler.profile.UpsertDailyEntry(user.ID, c.Params("date"), entry, time.Now())
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(saved)
}

func (handler *Handler) CycleInsights(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	insights, err := handler.profile.Insights(user.ID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"insights": insights})
}
