package schedule

import (
	"strings"
	"testing"
	"time"

	"github.com/quesurifn/rasp-ics/pkg/msk"
	"github.com/quesurifn/rasp-ics/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, msk.Location())
}

func lesson(title string, start time.Time, r types.Recurrence) types.Lesson {
	return types.Lesson{
		Title:      title,
		Start:      start,
		End:        start.Add(90 * time.Minute),
		Recurrence: r,
	}
}

func TestSemesterWindow(t *testing.T) {
	autumn := SemesterWindow(msk.Date(2024, time.October, 10))
	assert.Equal(t, msk.Date(2024, time.September, 1), autumn.From)
	assert.Equal(t, msk.Date(2025, time.January, 31), autumn.To)

	january := SemesterWindow(msk.Date(2025, time.January, 20))
	assert.Equal(t, msk.Date(2024, time.September, 1), january.From)

	spring := SemesterWindow(msk.Date(2025, time.March, 3))
	assert.Equal(t, msk.Date(2025, time.February, 1), spring.From)
	assert.Equal(t, msk.Date(2025, time.June, 30), spring.To)
}

func TestExpandOnceKeepsOnlyWindow(t *testing.T) {
	w := types.Window{From: msk.Date(2024, 9, 1), To: msk.Date(2024, 9, 30)}
	got := Expand([]types.Lesson{
		lesson("inside", at(2024, 9, 10, 9, 0), types.Once),
		lesson("outside", at(2024, 10, 1, 9, 0), types.Once),
	}, w, ExpandOptions{})

	require.Len(t, got, 1)
	assert.Equal(t, "inside", got[0].Title)
}

func TestExpandWeekly(t *testing.T) {
	// September 2024: Mondays are 2, 9, 16, 23, 30.
	w := types.Window{From: msk.Date(2024, 9, 1), To: msk.Date(2024, 9, 30)}
	got := Expand([]types.Lesson{lesson("math", at(2024, 9, 9, 10, 40), types.Weekly)}, w, ExpandOptions{})

	require.Len(t, got, 5)
	for i, day := range []int{2, 9, 16, 23, 30} {
		assert.Equal(t, at(2024, 9, day, 10, 40), got[i].Start)
		assert.Equal(t, at(2024, 9, day, 12, 10), got[i].End)
	}
}

func TestExpandParity(t *testing.T) {
	w := types.Window{From: msk.Date(2024, 9, 1), To: msk.Date(2024, 9, 30)}
	odd := Expand([]types.Lesson{lesson("odd", at(2024, 9, 2, 9, 0), types.OddWeeks)}, w, ExpandOptions{})
	even := Expand([]types.Lesson{lesson("even", at(2024, 9, 10, 9, 0), types.EvenWeeks)}, w, ExpandOptions{})

	assert.Equal(t, []int{2, 16, 30}, days(odd))
	assert.Equal(t, []int{10, 24}, days(even))
}

func TestExpandKeepsPublishedDate(t *testing.T) {
	w := SemesterWindow(msk.Date(2024, 9, 10))
	for _, r := range []types.Recurrence{types.Weekly, types.OddWeeks, types.EvenWeeks} {
		for _, start := range []time.Time{at(2024, 9, 2, 9, 0), at(2024, 9, 12, 12, 40), at(2024, 12, 27, 15, 0)} {
			src := lesson("x", start, r)
			got := Expand([]types.Lesson{src}, w, ExpandOptions{})

			var found bool
			for _, l := range got {
				if l.Start.Equal(src.Start) {
					found = true
				}
			}
			assert.True(t, found, "%s %s", r, start)
		}
	}

	biweekly := Expand([]types.Lesson{lesson("x", at(2024, 9, 2, 9, 0), types.OddWeeks)}, w, ExpandOptions{})
	require.Len(t, biweekly, 11)
	assert.Equal(t, 2, biweekly[0].Start.Day())
	for i := 1; i < len(biweekly); i++ {
		assert.Equal(t, 14*24*time.Hour, biweekly[i].Start.Sub(biweekly[i-1].Start))
	}
}

func days(lessons []types.Lesson) []int {
	var out []int
	for _, l := range lessons {
		out = append(out, l.Start.Day())
	}
	return out
}

func TestExpandRepeatOnce(t *testing.T) {
	w := types.Window{From: msk.Date(2024, 9, 1), To: msk.Date(2024, 9, 14)}
	got := Expand([]types.Lesson{lesson("once", at(2024, 9, 3, 9, 0), types.Once)}, w, ExpandOptions{RepeatOnce: true})

	require.Len(t, got, 2)
	assert.Equal(t, 3, got[0].Start.Day())
	assert.Equal(t, 10, got[1].Start.Day())
}

func TestExpandEmptyWindow(t *testing.T) {
	w := types.Window{From: msk.Date(2024, 9, 10), To: msk.Date(2024, 9, 1)}
	assert.Empty(t, Expand([]types.Lesson{lesson("x", at(2024, 9, 5, 9, 0), types.Weekly)}, w, ExpandOptions{}))
}

func TestNormalizeSortsAndDedupes(t *testing.T) {
	a := lesson("b", at(2024, 9, 2, 9, 0), types.Once)
	b := lesson("a", at(2024, 9, 2, 9, 0), types.Once)
	c := lesson("c", at(2024, 9, 1, 9, 0), types.Once)
	dup := a
	dup.Location = "  "

	got := Normalize([]types.Lesson{a, b, c, dup})
	require.Len(t, got, 3)
	assert.Equal(t, []string{"c", "a", "b"}, []string{got[0].Title, got[1].Title, got[2].Title})
}

func TestWeekLimitsToCurrentWeek(t *testing.T) {
	today := msk.Date(2024, 1, 3) // Wednesday
	lessons := []types.Lesson{
		lesson("Информатика", at(2024, 1, 3, 9, 0), types.Once),
		lesson("Философия", at(2024, 1, 13, 9, 0), types.Once),
		lesson("Понедельник", at(2024, 1, 1, 9, 0), types.Once),
		lesson("Воскресенье", at(2024, 1, 7, 9, 0), types.Once),
	}
	got := Week(lessons, today)
	require.Len(t, got, 3)
	assert.Equal(t, "Понедельник", got[0].Title)
	assert.Equal(t, "Воскресенье", got[2].Title)
}

func TestFormatWeek(t *testing.T) {
	today := msk.Date(2024, 1, 3)
	info := lesson("Информатика", at(2024, 1, 3, 9, 0), types.Once)
	info.Kind = "Лекция"
	info.Teacher = "И.И. Иванов"
	info.Location = "101"
	later := lesson("Философия", at(2024, 1, 13, 9, 0), types.Once)

	text := FormatWeek("15.14д-гг01/24м", []types.Lesson{info, later}, today)
	assert.Contains(t, text, "Группа: 15.14д-гг01/24м")
	assert.Contains(t, text, "Среда, 03.01")
	assert.Contains(t, text, "09:00–10:30 · Информатика · Лекция · И.И. Иванов · 101")
	assert.NotContains(t, text, "Философия")
}

func TestFormatWeekEmpty(t *testing.T) {
	text := FormatWeek("", nil, msk.Date(2024, 1, 3))
	assert.True(t, strings.HasSuffix(text, NoLessonsText))
	assert.NotContains(t, text, "Группа")
}
