package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	c "github.com/quesurifn/rasp-ics/calendar"
	"github.com/quesurifn/rasp-ics/pkg/msk"
	"github.com/quesurifn/rasp-ics/schedule"
	t "github.com/quesurifn/rasp-ics/types"
	"go.uber.org/zap"
)

// Fetcher loads the lessons of a group.
type Fetcher interface {
	Fetch(ctx context.Context, url, group string) ([]t.Lesson, error)
}

type Handlers struct {
	Logger   *zap.Logger
	Calendar *c.Calendar
	Schedule Fetcher
	Renderer c.Renderer

	// Group and URL are used when a request names neither.
	Group string
	URL   string
	Now   func() time.Time
}

func (h Handlers) now() time.Time {
	if h.Now != nil {
		return h.Now().In(msk.Location())
	}
	return msk.Now()
}

// fetchStatus maps schedule errors to HTTP status codes.
func fetchStatus(err error) int {
	switch {
	case errors.Is(err, schedule.ErrNoSelection):
		return fiber.StatusBadRequest
	case errors.Is(err, schedule.ErrNoLessons):
		return fiber.StatusNotFound
	default:
		return fiber.StatusBadGateway
	}
}

func fail(ctx *fiber.Ctx, status int, err error) error {
	return ctx.Status(status).JSON(t.BaseResponse[any]{Message: err.Error()})
}

// Mount registers every route on router.
func (h Handlers) Mount(router fiber.Router) {
	router.Get("/", h.RootHandler)
	router.Get("/schedule", h.ScheduleHandler)
	router.Get("/schedule/week", h.WeekHandler)
	router.Get("/schedule/ics", h.IcsHandler)
	router.Post("/ics/next-event", h.NextEventHandler)
}
