package main

import (
	"time"

	"github.com/quesurifn/rasp-ics/calendar"
	"github.com/quesurifn/rasp-ics/schedule"
)

// newService builds the schedule pipeline from configuration. Long running
// commands pass cache=true.
func newService(weeks []int, cache bool) (*schedule.Service, error) {
	client := schedule.NewClient(schedule.ClientConfig{
		BaseURL: cfg.Schedule.BaseURL,
		Timeout: cfg.Schedule.Timeout,
		Retries: cfg.Schedule.Retries,
	}, logger)

	opts := schedule.Options{
		Weeks:         cfg.Schedule.Weeks,
		DetailWorkers: cfg.Schedule.DetailWorkers,
	}
	if len(weeks) > 0 {
		opts.Weeks = weeks
	}
	if cache {
		opts.CacheTTL = cfg.Schedule.CacheTTL
	}
	return schedule.NewService(client, opts, logger)
}

func newRenderer() calendar.Renderer {
	return calendar.Renderer{
		Name:  cfg.Calendar.Name,
		Color: cfg.Calendar.Color,
		Now:   time.Now,
	}
}

// selection returns the url and group to fetch, falling back to the
// configured defaults when neither is given.
func selection(url, group string) (string, string) {
	if url == "" && group == "" {
		return cfg.Schedule.URL, cfg.Schedule.Group
	}
	return url, group
}

func label(url, group string) string {
	if s := schedule.SelectionFromURL(url); s != "" {
		return s
	}
	return group
}
