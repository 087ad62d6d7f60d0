package calendar

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/apognu/gocal"
	"github.com/go-resty/resty/v2"
	"github.com/quesurifn/rasp-ics/pkg/msk"
	t "github.com/quesurifn/rasp-ics/types"
	"go.uber.org/zap"
)

var ErrNoEvents = errors.New("no upcoming events")

// TZMap resolves the Windows zone names some feeds emit in TZID. It backs
// both Location and gocal's mapper for zones named inside feeds.
var TZMap = map[string]string{
	"Russian Standard Time":   msk.Name,
	"Russia Time Zone 3":      "Europe/Samara",
	"E. Europe Standard Time": "Europe/Chisinau",
	"FLE Standard Time":       "Europe/Kiev",
	"GMT Standard Time":       "Europe/London",
	"W. Europe Standard Time": "Europe/Berlin",
	"Eastern Standard Time":   "America/New_York",
	"Pacific Standard Time":   "America/Los_Angeles",
	"UTC":                     "UTC",
}

var tzMapperOnce sync.Once

// Calendar reads remote ICS feeds.
type Calendar struct {
	Logger *zap.Logger

	http *resty.Client
}

func New(logger *zap.Logger, timeout time.Duration) *Calendar {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Calendar{
		Logger: logger,
		http:   resty.New().SetTimeout(timeout).SetRetryCount(1),
	}
	tzMapperOnce.Do(func() {
		gocal.SetTZMapper(func(name string) (*time.Location, error) {
			if iana, ok := TZMap[name]; ok {
				return time.LoadLocation(iana)
			}
			return nil, fmt.Errorf("unknown timezone %q", name)
		})
	})
	return c
}

func (c *Calendar) Download(ctx context.Context, url string) (string, error) {
	resp, err := c.http.R().SetContext(ctx).Get(url)
	if err != nil {
		return "", fmt.Errorf("download calendar: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("download calendar: %s", resp.Status())
	}
	return resp.String(), nil
}

// Location resolves a zone given either as an IANA name or as one of the
// names in TZMap. Empty means Moscow.
func (c *Calendar) Location(tz string) (*time.Location, error) {
	tz = strings.TrimSpace(tz)
	if tz == "" {
		return msk.Location(), nil
	}
	if iana, ok := TZMap[tz]; ok {
		tz = iana
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("unknown timezone %q: %w", tz, err)
	}
	return loc, nil
}

// Parse reads the events of data that fall in window, with recurring
// events expanded by gocal.
func (c *Calendar) Parse(data string, tz string, window t.Window) ([]t.Event, error) {
	loc, err := c.Location(tz)
	if err != nil {
		return nil, err
	}
	start, end := window.From.In(loc), window.To.In(loc)

	parser := gocal.NewParser(strings.NewReader(data))
	parser.Start, parser.End = &start, &end
	if err := parser.Parse(); err != nil {
		return nil, fmt.Errorf("parse calendar: %w", err)
	}

	events := make([]t.Event, 0, len(parser.Events))
	for _, e := range parser.Events {
		if e.Start == nil || e.End == nil {
			continue
		}
		location := e.Location
		events = append(events, t.Event{
			Name:      e.Summary,
			StartTime: e.Start.Unix(),
			EndTime:   e.End.Unix(),
			Location:  &location,
		})
	}
	c.Logger.Debug("Parse", zap.Int("events", len(events)), zap.String("tz", loc.String()))
	return events, nil
}

// NextEvent returns the earliest event starting after now.
func (c *Calendar) NextEvent(events []t.Event, now time.Time) (*t.Event, error) {
	var next *t.Event
	for i := range events {
		e := &events[i]
		if e.StartTime <= now.Unix() {
			continue
		}
		if next == nil || e.StartTime < next.StartTime {
			next = e
		}
	}
	if next == nil {
		return nil, ErrNoEvents
	}
	return next, nil
}
