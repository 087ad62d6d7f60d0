package handlers

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	c "github.com/quesurifn/rasp-ics/calendar"
	t "github.com/quesurifn/rasp-ics/types"
	"go.uber.org/zap"
)

// NextEventHandler reports the next event of a remote ICS feed.
func (h Handlers) NextEventHandler(ctx *fiber.Ctx) error {
	var icsRequest t.IcsRequest

	if err := ctx.BodyParser(&icsRequest); err != nil {
		return fail(ctx, fiber.StatusBadRequest, err)
	}
	if icsRequest.ICSUrl == "" {
		return fail(ctx, fiber.StatusBadRequest, errors.New("icsUrl is required"))
	}

	h.Logger.Info("NextEventHandler", zap.String("url", icsRequest.ICSUrl), zap.String("tz", icsRequest.TZ))

	calString, err := h.Calendar.Download(ctx.UserContext(), icsRequest.ICSUrl)
	if err != nil {
		h.Logger.Warn("NextEventHandler", zap.Error(err))
		return fail(ctx, fiber.StatusBadGateway, err)
	}

	now := h.now()
	window := t.Window{From: now, To: now.AddDate(1, 0, 0)}
	events, err := h.Calendar.Parse(calString, icsRequest.TZ, window)
	if err != nil {
		return fail(ctx, fiber.StatusBadRequest, err)
	}

	h.Logger.Debug("NextEventHandler", zap.Int("events", len(events)))

	next, err := h.Calendar.NextEvent(events, now)
	if errors.Is(err, c.ErrNoEvents) {
		return fail(ctx, fiber.StatusNotFound, err)
	}
	if err != nil {
		return fail(ctx, fiber.StatusInternalServerError, fmt.Errorf("next event: %w", err))
	}

	return ctx.JSON(t.IcsResponse{
		EventName:      next.Name,
		EventStartTime: next.StartTime,
		EventEndTime:   next.EndTime,
		EventLocation:  next.Location,
	})
}
