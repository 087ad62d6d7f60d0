package schedule

import (
	"fmt"
	"strings"
	"time"

	t "github.com/quesurifn/rasp-ics/types"
)

var weekdayNames = map[time.Weekday]string{
	time.Monday:    "Понедельник",
	time.Tuesday:   "Вторник",
	time.Wednesday: "Среда",
	time.Thursday:  "Четверг",
	time.Friday:    "Пятница",
	time.Saturday:  "Суббота",
	time.Sunday:    "Воскресенье",
}

const NoLessonsText = "На эту неделю занятий не найдено."

// FormatWeek renders the lessons of the week containing ref as chat text.
func FormatWeek(group string, lessons []t.Lesson, ref time.Time) string {
	monday := Monday(ref)
	week := Week(lessons, ref)

	var b strings.Builder
	if group != "" {
		fmt.Fprintf(&b, "Группа: %s\n", group)
	}
	fmt.Fprintf(&b, "Неделя %s – %s\n", monday.Format("02.01.2006"), monday.AddDate(0, 0, 6).Format("02.01.2006"))

	if len(week) == 0 {
		b.WriteString("\n" + NoLessonsText)
		return b.String()
	}

	var current time.Time
	for _, l := range week {
		if day := l.Date(); !day.Equal(current) {
			current = day
			fmt.Fprintf(&b, "\n%s, %s\n", weekdayNames[day.Weekday()], day.Format("02.01"))
		}
		b.WriteString(FormatLesson(l))
		b.WriteByte('\n')
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatLesson renders one line: time range, title, type, teacher, room.
func FormatLesson(l t.Lesson) string {
	parts := []string{l.Start.Format("15:04") + "–" + l.End.Format("15:04")}
	for _, p := range []string{l.Title, l.Kind, l.Teacher, l.Location} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " · ")
}
