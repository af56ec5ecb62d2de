// Package httpapi exposes the device registry and price-list sources over
// HTTP, using the same fiber handler-struct shape the rest of this stack
// uses: a handler holds the service it fronts plus a logger, nothing else.
package httpapi

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/homepower/switchplanner/internal/apperr"
	"github.com/homepower/switchplanner/internal/priceprovider"
	"github.com/homepower/switchplanner/internal/registry"
	"github.com/homepower/switchplanner/internal/service/health"
	"go.uber.org/zap"
)

// PowerConsumerHandler fronts the device registry's schedule/cancel/list
// operations.
type PowerConsumerHandler struct {
	reg *registry.Registry
	log *zap.Logger
}

func NewPowerConsumerHandler(reg *registry.Registry, log *zap.Logger) *PowerConsumerHandler {
	return &PowerConsumerHandler{reg: reg, log: log}
}

func (h *PowerConsumerHandler) List(c *fiber.Ctx) error {
	return c.JSON(h.reg.ListModels(time.Now()))
}

func (h *PowerConsumerHandler) Schedule(c *fiber.Ctx) error {
	id := c.Params("id")

	durationMs, err := strconv.ParseInt(c.Query("consumptionDuration"), 10, 64)
	if err != nil {
		return writeAppErr(c, apperr.NewUser("consumptionDuration must be an integer number of milliseconds"))
	}
	finishAtMs, err := strconv.ParseInt(c.Query("finishAt"), 10, 64)
	if err != nil {
		return writeAppErr(c, apperr.NewUser("finishAt must be an integer epoch-millisecond timestamp"))
	}

	duration := time.Duration(durationMs) * time.Millisecond
	finishAt := time.UnixMilli(finishAtMs)

	model, err := h.reg.Schedule(c.Context(), id, duration, finishAt)
	if err != nil {
		return writeAppErr(c, err)
	}
	return c.JSON(model)
}

func (h *PowerConsumerHandler) Cancel(c *fiber.Ctx) error {
	id := c.Params("id")

	model, err := h.reg.Cancel(c.Context(), id)
	if err != nil {
		return writeAppErr(c, err)
	}
	return c.JSON(model)
}

// PriceListHandler fronts the price-list assembler for the standalone
// "what does the curve look like today" endpoint.
type PriceListHandler struct {
	assembler *priceprovider.Assembler
	log       *zap.Logger
}

func NewPriceListHandler(assembler *priceprovider.Assembler, log *zap.Logger) *PriceListHandler {
	return &PriceListHandler{assembler: assembler, log: log}
}

func (h *PriceListHandler) Get(c *fiber.Ctx) error {
	date := c.Params("date")
	day, err := priceprovider.ParseDate(date)
	if err != nil {
		return writeAppErr(c, apperr.NewUser("Input date has incorrect format"))
	}

	items, err := h.assembler.Assemble(c.Context(), day, day.Add(24*time.Hour))
	if err != nil {
		return writeAppErr(c, err)
	}
	return c.JSON(items)
}

// HealthHandler backs the liveness/readiness probes, delegating the actual
// dependency checks to health.Service.
type HealthHandler struct {
	svc *health.Service
}

func NewHealthHandler(svc *health.Service) *HealthHandler {
	return &HealthHandler{svc: svc}
}

func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(h.svc.Health(c.Context()))
}

func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	response := h.svc.Ready(c.Context())
	status := fiber.StatusOK
	if !response.Ready {
		status = fiber.StatusServiceUnavailable
	}
	return c.Status(status).JSON(response)
}

func writeAppErr(c *fiber.Ctx, err error) error {
	appErr, ok := apperr.As(err)
	if !ok {
		return err
	}
	return c.Status(appErr.HTTPStatus()).JSON(fiber.Map{"message": appErr.Error()})
}
