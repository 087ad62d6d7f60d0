package types

import (
	"fmt"
	"time"
)

type Recurrence int

const (
	Once Recurrence = iota
	Weekly
	OddWeeks
	EvenWeeks
)

func (r Recurrence) String() string {
	switch r {
	case Weekly:
		return "weekly"
	case OddWeeks:
		return "odd"
	case EvenWeeks:
		return "even"
	default:
		return "once"
	}
}

// Lesson is a single class taken from the published schedule. Start and End
// carry the Moscow wall-clock time of the class.
type Lesson struct {
	Start      time.Time
	End        time.Time
	Title      string
	Kind       string
	Teacher    string
	Location   string
	Extra      string
	ElementID  string
	Pair       int
	Recurrence Recurrence
}

func (l Lesson) Weekday() time.Weekday {
	return l.Start.Weekday()
}

func (l Lesson) Date() time.Time {
	y, m, d := l.Start.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, l.Start.Location())
}

// Summary is the calendar title of the lesson: "title (kind)".
func (l Lesson) Summary() string {
	if l.Kind == "" {
		return l.Title
	}
	return fmt.Sprintf("%s (%s)", l.Title, l.Kind)
}

// Window is a closed range of calendar days.
type Window struct {
	From time.Time
	To   time.Time
}

func (w Window) Contains(t time.Time) bool {
	y, m, d := t.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, w.From.Location())
	return !day.Before(w.From) && !day.After(w.To)
}

// Event is an entry read back from an external ICS feed.
type Event struct {
	Name      string
	StartTime int64
	EndTime   int64
	Location  *string
}

type BaseResponse[t any] struct {
	Data    t      `json:"data"`
	Message string `json:"message"`
}

type IcsRequest struct {
	ICSUrl string `json:"icsUrl"`
	TZ     string `json:"tz"`
}

type IcsResponse struct {
	EventName      string  `json:"eventName"`
	EventStartTime int64   `json:"eventStart"`
	EventEndTime   int64   `json:"eventEnd"`
	EventLocation  *string `json:"eventLocation"`
}

type LessonResponse struct {
	Title      string `json:"title"`
	Kind       string `json:"kind,omitempty"`
	Start      int64  `json:"start"`
	End        int64  `json:"end"`
	Teacher    string `json:"teacher,omitempty"`
	Location   string `json:"location,omitempty"`
	Extra      string `json:"extra,omitempty"`
	Pair       int    `json:"pair,omitempty"`
	Recurrence string `json:"recurrence"`
}

func NewLessonResponse(l Lesson) LessonResponse {
	return LessonResponse{
		Title:      l.Title,
		Kind:       l.Kind,
		Start:      l.Start.Unix(),
		End:        l.End.Unix(),
		Teacher:    l.Teacher,
		Location:   l.Location,
		Extra:      l.Extra,
		Pair:       l.Pair,
		Recurrence: l.Recurrence.String(),
	}
}
