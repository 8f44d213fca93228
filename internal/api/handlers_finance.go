package api

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

func (handler *Handler) GetFinanceAggregate(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	aggregate, found, err := handler.ledger.Aggregate(user.ID)
	if err != nil {
		return serviceError(c, err)
	}
	if !found {
		return apiError(c, fiber.StatusNotFound, "no finance data yet")
	}
	return c.JSON(aggregate)
}

func (handler *Handler) PostTransaction(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	input := transactionInput{}
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid request body")
	}

	posted, err := handler.ledger.Post(user.ID, input.toModel())
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(posted)
}

func (handler *Handler) DeleteTransaction(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid transaction id")
	}

	tx, found, err := handler.ledgerRepo.FindTransaction(user.ID, id)
	if err != nil {
		return serviceError(c, err)
	}
	if !found {
		return apiError(c, fiber.StatusNotFound, "transaction not found")
	}

	if err := handler.ledger.Delete(user.ID, tx); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"ok": true})
}

func (handler *Handler) ListTransactions(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	pageSize := c.QueryInt("limit", 10)
	page, next, err := handler.ledger.Transactions(user.ID, c.Query("cursor"), pageSize)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"transactions": page, "nextCursor": next})
}

func (handler *Handler) MigrateLegacyTransactions(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	migrated, err := handler.migrator.MigrateLegacy(user.ID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"migrated": migrated})
}

func (handler *Handler) ReconcileFinance(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	aggregate, err := handler.migrator.Reconcile(user.ID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(aggregate)
}
