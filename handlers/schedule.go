package handlers

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	c "github.com/quesurifn/rasp-ics/calendar"
	"github.com/quesurifn/rasp-ics/pkg/msk"
	"github.com/quesurifn/rasp-ics/schedule"
	t "github.com/quesurifn/rasp-ics/types"
	"go.uber.org/zap"
)

type scheduleQuery struct {
	url   string
	group string
	ref   time.Time
}

func (h Handlers) query(ctx *fiber.Ctx) (scheduleQuery, error) {
	q := scheduleQuery{
		url:   ctx.Query("url"),
		group: ctx.Query("group"),
		ref:   h.now(),
	}
	if q.url == "" && q.group == "" {
		q.url, q.group = h.URL, h.Group
	}
	if date := ctx.Query("date"); date != "" {
		ref, err := msk.ParseDate(date)
		if err != nil {
			return q, fmt.Errorf("bad date %q, want YYYY-MM-DD", date)
		}
		q.ref = ref
	}
	return q, nil
}

// name is the group label used in texts and file names.
func (q scheduleQuery) name() string {
	if s := schedule.SelectionFromURL(q.url); s != "" {
		return s
	}
	return q.group
}

// semester fetches the lessons of a query expanded over the semester of
// its reference date.
func (h Handlers) semester(ctx *fiber.Ctx, q scheduleQuery) ([]t.Lesson, error) {
	lessons, err := h.Schedule.Fetch(ctx.UserContext(), q.url, q.group)
	if err != nil {
		return nil, err
	}
	expanded := schedule.Expand(lessons, schedule.SemesterWindow(q.ref), schedule.ExpandOptions{})
	if len(expanded) == 0 {
		return nil, fmt.Errorf("%w in the semester of %s", schedule.ErrNoLessons, q.ref.Format("2006-01-02"))
	}
	return expanded, nil
}

func (h Handlers) ScheduleHandler(ctx *fiber.Ctx) error {
	q, err := h.query(ctx)
	if err != nil {
		return fail(ctx, fiber.StatusBadRequest, err)
	}
	h.Logger.Info("ScheduleHandler", zap.String("group", q.group), zap.String("url", q.url))

	lessons, err := h.semester(ctx, q)
	if err != nil {
		h.Logger.Warn("ScheduleHandler", zap.Error(err))
		return fail(ctx, fetchStatus(err), err)
	}

	data := make([]t.LessonResponse, 0, len(lessons))
	for _, l := range lessons {
		data = append(data, t.NewLessonResponse(l))
	}
	return ctx.JSON(t.BaseResponse[[]t.LessonResponse]{Data: data, Message: q.name()})
}

func (h Handlers) WeekHandler(ctx *fiber.Ctx) error {
	q, err := h.query(ctx)
	if err != nil {
		return fail(ctx, fiber.StatusBadRequest, err)
	}
	h.Logger.Info("WeekHandler", zap.String("group", q.group), zap.Time("ref", q.ref))

	lessons, err := h.semester(ctx, q)
	if err != nil {
		h.Logger.Warn("WeekHandler", zap.Error(err))
		return fail(ctx, fetchStatus(err), err)
	}
	return ctx.SendString(schedule.FormatWeek(q.name(), lessons, q.ref))
}

func (h Handlers) IcsHandler(ctx *fiber.Ctx) error {
	q, err := h.query(ctx)
	if err != nil {
		return fail(ctx, fiber.StatusBadRequest, err)
	}
	target, err := c.ParseTarget(ctx.Query("target"))
	if err != nil {
		return fail(ctx, fiber.StatusBadRequest, err)
	}
	h.Logger.Info("IcsHandler", zap.String("group", q.group), zap.String("target", string(target)))

	lessons, err := h.semester(ctx, q)
	if err != nil {
		h.Logger.Warn("IcsHandler", zap.Error(err))
		return fail(ctx, fetchStatus(err), err)
	}

	body, err := h.Renderer.Render(lessons, target)
	if err != nil {
		return fail(ctx, fiber.StatusInternalServerError, err)
	}
	ctx.Attachment(c.FileName(q.name(), target))
	ctx.Set(fiber.HeaderContentType, "text/calendar; charset=utf-8")
	return ctx.Send(body)
}
