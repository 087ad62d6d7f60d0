package calendar

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/quesurifn/rasp-ics/pkg/msk"
	t "github.com/quesurifn/rasp-ics/types"
)

const (
	DefaultName  = "Расписание РЭУ"
	DefaultColor = "#1d9bf0"

	productID = "-//REA Schedule Parser//RU"
	uidDomain = "rasp.rea.ru"
	localTime = "20060102T150405"
)

var ErrUnknownTarget = errors.New("unknown calendar target")

// Target selects the calendar flavour. Mobile calendars keep Moscow local
// times and carry reminders, Google calendars are plain UTC.
type Target string

const (
	Mobile Target = "mobile"
	Google Target = "google"
)

func ParseTarget(s string) (Target, error) {
	switch Target(strings.ToLower(strings.TrimSpace(s))) {
	case "", Mobile:
		return Mobile, nil
	case Google:
		return Google, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTarget, s)
}

// FileName is the attachment name of a group's calendar.
func FileName(group string, target Target) string {
	name := slug.Make(group)
	if name == "" {
		name = "schedule"
	}
	if target == Google {
		return "schedule_" + name + "_google.ics"
	}
	return "schedule_" + name + ".ics"
}

type Renderer struct {
	Name  string
	Color string
	// Now stamps DTSTAMP. Defaults to time.Now.
	Now func() time.Time
}

// Render serializes lessons into an iCalendar document.
func (r Renderer) Render(lessons []t.Lesson, target Target) ([]byte, error) {
	if target != Mobile && target != Google {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTarget, target)
	}

	name := r.Name
	if name == "" {
		name = DefaultName
	}
	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	stamp := now().UTC()

	cal := ics.NewCalendar()
	cal.SetProductId(productID)
	cal.SetCalscale("GREGORIAN")
	cal.SetMethod(ics.MethodPublish)
	cal.SetXWRCalName(name)
	if target == Mobile {
		cal.SetXWRTimezone(msk.Name)
		addMoscowZone(cal)
	}

	sorted := append([]t.Lesson(nil), lessons...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start.Before(sorted[j].Start)
	})

	for _, l := range sorted {
		e := cal.AddEvent(UID(l))
		e.SetDtStampTime(stamp)
		e.SetSummary(l.Summary())
		if d := description(l); d != "" {
			e.SetDescription(d)
		}
		e.SetLocation(l.Location)

		if target == Google {
			e.SetStartAt(l.Start)
			e.SetEndAt(l.End)
			continue
		}

		tzid := &ics.KeyValues{Key: string(ics.ParameterTzid), Value: []string{msk.Name}}
		e.SetProperty(ics.ComponentPropertyDtStart, l.Start.In(msk.Location()).Format(localTime), tzid)
		e.SetProperty(ics.ComponentPropertyDtEnd, l.End.In(msk.Location()).Format(localTime), tzid)
		color := r.Color
		if color == "" {
			color = DefaultColor
		}
		e.SetProperty(ics.ComponentProperty("COLOR"), color)
		for _, lead := range reminders(l.Pair) {
			a := e.AddAlarm()
			a.SetAction(ics.ActionDisplay)
			a.SetTrigger(lead)
			a.SetProperty(ics.ComponentPropertyDescription, "Скоро "+l.Title)
		}
	}

	return []byte(cal.Serialize()), nil
}

// UID identifies one dated occurrence of a lesson.
func UID(l t.Lesson) string {
	if l.ElementID != "" {
		return fmt.Sprintf("%s-%s@%s", l.ElementID, l.Start.In(msk.Location()).Format("20060102"), uidDomain)
	}
	id := uuid.NewSHA1(uuid.NameSpaceOID, []byte(l.Summary()+"|"+l.Start.UTC().Format(time.RFC3339)))
	return id.String() + "@" + uidDomain
}

func description(l t.Lesson) string {
	var parts []string
	if l.Teacher != "" {
		parts = append(parts, "Преподаватель: "+l.Teacher)
	}
	if l.Location != "" {
		parts = append(parts, "Аудитория: "+l.Location)
	}
	if l.Extra != "" {
		parts = append(parts, l.Extra)
	}
	return strings.Join(parts, "\n")
}

// reminders returns alarm triggers. The second and third pairs follow a
// short break, so they only get the late reminder.
func reminders(pair int) []string {
	if pair == 2 || pair == 3 {
		return []string{"-PT10M"}
	}
	return []string{"-PT70M", "-PT10M"}
}

func addMoscowZone(cal *ics.Calendar) {
	tz := cal.AddTimezone(msk.Name)
	std := &ics.Standard{}
	tz.Components = append(tz.Components, std)
	std.SetProperty(ics.ComponentPropertyDtStart, "19300101T000000")
	std.SetProperty(ics.ComponentProperty("TZOFFSETFROM"), "+0300")
	std.SetProperty(ics.ComponentProperty("TZOFFSETTO"), "+0300")
	std.SetProperty(ics.ComponentProperty("TZNAME"), "MSK")
}
