package schedule

import (
	"math"
	"sort"
	"time"

	"github.com/quesurifn/rasp-ics/pkg/msk"
	t "github.com/quesurifn/rasp-ics/types"
)

type ExpandOptions struct {
	// RepeatOnce projects dated lessons over the whole window as if they
	// were weekly.
	RepeatOnce bool
}

// SemesterWindow returns the semester containing ref: September to January
// or February to June.
func SemesterWindow(ref time.Time) t.Window {
	ref = msk.Day(ref)
	y := ref.Year()
	switch m := ref.Month(); {
	case m >= time.August:
		return t.Window{From: msk.Date(y, time.September, 1), To: msk.Date(y+1, time.January, 31)}
	case m == time.January:
		return t.Window{From: msk.Date(y-1, time.September, 1), To: msk.Date(y, time.January, 31)}
	default:
		return t.Window{From: msk.Date(y, time.February, 1), To: msk.Date(y, time.June, 30)}
	}
}

// Expand projects lessons onto the dates of the window according to their
// recurrence and returns the normalized result.
func Expand(lessons []t.Lesson, w t.Window, opts ExpandOptions) []t.Lesson {
	w = t.Window{From: msk.Day(w.From), To: msk.Day(w.To)}
	if w.To.Before(w.From) {
		return nil
	}

	var out []t.Lesson
	for _, l := range lessons {
		r := l.Recurrence
		if r == t.Once && opts.RepeatOnce {
			r = t.Weekly
		}
		if r == t.Once {
			if w.Contains(l.Start) {
				out = append(out, l)
			}
			continue
		}

		start := l.Start.In(msk.Location())
		end := l.End.In(msk.Location())
		for day := firstWeekday(w.From, start.Weekday()); !day.After(w.To); day = day.AddDate(0, 0, 7) {
			if r != t.Weekly && weeksBetween(start, day)%2 != 0 {
				continue
			}
			y, m, d := day.Date()
			occ := l
			occ.Start = time.Date(y, m, d, start.Hour(), start.Minute(), 0, 0, msk.Location())
			occ.End = time.Date(y, m, d, end.Hour(), end.Minute(), 0, 0, msk.Location())
			out = append(out, occ)
		}
	}
	return Normalize(out)
}

// Normalize sorts lessons by start and title and drops duplicates of the
// same slot.
func Normalize(lessons []t.Lesson) []t.Lesson {
	type key struct {
		start    int64
		title    string
		location string
	}
	seen := make(map[key]struct{}, len(lessons))
	out := make([]t.Lesson, 0, len(lessons))
	for _, l := range lessons {
		l.Location = CleanLocation([]string{l.Location})
		k := key{l.Start.Unix(), l.Title, l.Location}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, l)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Start.Equal(out[j].Start) {
			return out[i].Start.Before(out[j].Start)
		}
		return out[i].Title < out[j].Title
	})
	return out
}

// Week returns the lessons of the Monday to Sunday week containing ref.
func Week(lessons []t.Lesson, ref time.Time) []t.Lesson {
	monday := Monday(ref)
	w := t.Window{From: monday, To: monday.AddDate(0, 0, 6)}
	var out []t.Lesson
	for _, l := range lessons {
		if w.Contains(l.Start) {
			out = append(out, l)
		}
	}
	return Normalize(out)
}

// Monday returns midnight of the Monday starting the week of ref.
func Monday(ref time.Time) time.Time {
	day := msk.Day(ref)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

func firstWeekday(from time.Time, wd time.Weekday) time.Time {
	offset := (int(wd) - int(from.Weekday()) + 7) % 7
	return from.AddDate(0, 0, offset)
}

// weeksBetween counts the Monday-based weeks from a to b. Odd and even week
// lessons repeat every other week counted from their published date, so the
// site's own week numbering never has to be known.
func weeksBetween(a, b time.Time) int {
	days := int(math.Round(Monday(b).Sub(Monday(a)).Hours() / 24))
	if days < 0 {
		days = -days
	}
	return days / 7
}
