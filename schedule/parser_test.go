package schedule

import (
	"testing"
	"time"

	"github.com/quesurifn/rasp-ics/pkg/msk"
	"github.com/quesurifn/rasp-ics/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cardHTML = `
<table>
	<h5>Понедельник 01.01.2024</h5>
	<tr>
		<td>1 пара
09:00
10:30</td>
		<td>
			<a class="task" data-elementid="1">
				Информатика
				<span>Лекция</span>
				<span>Ауд. 101</span>
			</a>
		</td>
	</tr>
</table>`

const multiDayHTML = `
<div>
<table><thead><tr><th><h5>Вторник 02.01.2024</h5></th></tr></thead>
<tbody>
	<tr>
		<td>2 пара<br>10:40<br>12:10</td>
		<td><a class="task" data-elementid="7">Философия<br>Практика<br>Корпус 3,
		ауд. 305<br>(по нечётным неделям)</a></td>
	</tr>
	<tr>
		<td>нет времени</td>
		<td><a class="task">Без времени<br>Лекция</a></td>
	</tr>
</tbody></table>
<table><thead><tr><th><h5>Без даты</h5></th></tr></thead>
<tbody><tr><td>3 пара<br>12:40<br>14:10</td><td><a class="task">Потерянное</a></td></tr></tbody></table>
<table><thead><tr><th><h5>Среда 03.01.2024</h5></th></tr></thead>
<tbody><tr><td>3 пара<br>12:40<br>14:10</td><td><a class="task" data-elementid="9">Экономика</a></td></tr></tbody></table>
</div>`

func TestParserCard(t *testing.T) {
	lessons, err := Parser{}.Card(cardHTML)
	require.NoError(t, err)
	require.Len(t, lessons, 1)

	l := lessons[0]
	assert.Equal(t, "Информатика", l.Title)
	assert.Equal(t, "Лекция", l.Kind)
	assert.Equal(t, "Ауд. 101", l.Location)
	assert.Equal(t, "1", l.ElementID)
	assert.Equal(t, 1, l.Pair)
	assert.Equal(t, types.Once, l.Recurrence)
	assert.Equal(t, time.Date(2024, 1, 1, 9, 0, 0, 0, msk.Location()), l.Start)
	assert.Equal(t, time.Date(2024, 1, 1, 10, 30, 0, 0, msk.Location()), l.End)
}

func TestParserCardMultipleDays(t *testing.T) {
	lessons, err := Parser{}.Card(multiDayHTML)
	require.NoError(t, err)
	require.Len(t, lessons, 2)

	phil := lessons[0]
	assert.Equal(t, "Философия", phil.Title)
	assert.Equal(t, "Практика", phil.Kind)
	assert.Equal(t, "Корпус 3, ауд. 305", phil.Location)
	assert.Equal(t, types.OddWeeks, phil.Recurrence)
	assert.Equal(t, 2, phil.Pair)
	assert.Equal(t, time.Date(2024, 1, 2, 10, 40, 0, 0, msk.Location()), phil.Start)

	econ := lessons[1]
	assert.Equal(t, "Экономика", econ.Title)
	assert.Empty(t, econ.Kind)
	assert.Empty(t, econ.Location)
	assert.Equal(t, 3, econ.Pair)
	assert.Equal(t, time.Date(2024, 1, 3, 12, 40, 0, 0, msk.Location()), econ.Start)
}

func TestParserCardEmpty(t *testing.T) {
	lessons, err := Parser{}.Card("   ")
	require.NoError(t, err)
	assert.Empty(t, lessons)
}

func TestParserDetails(t *testing.T) {
	html := `<div class="element-info-body">
		<h5>Информатика</h5>
		<strong>Преподаватель:</strong>
		<div>school</div>
		<a>И.И. Иванов</a>
		<div>Площадка: корпус А</div>
		<div>(кафедра информатики)</div>
	</div>`

	teacher, extra := Parser{}.Details(html)
	assert.Equal(t, "И.И. Иванов", teacher)
	assert.Equal(t, "Площадка: корпус А, (кафедра информатики)", extra)
}

func TestParserDetailsInlineTeacher(t *testing.T) {
	teacher, extra := Parser{}.Details(`<div class="element-info-body">Преподаватель: Петров П.П.</div>`)
	assert.Equal(t, "Петров П.П.", teacher)
	assert.Empty(t, extra)
}

func TestParserDetailsMissingBody(t *testing.T) {
	teacher, extra := Parser{}.Details(`<div>nothing</div>`)
	assert.Empty(t, teacher)
	assert.Empty(t, extra)
}

func TestRecurrenceMarker(t *testing.T) {
	cases := map[string]types.Recurrence{
		"(по нечётным неделям)": types.OddWeeks,
		"по четным неделям":     types.EvenWeeks,
		"Числитель":             types.OddWeeks,
		"знаменатель":           types.EvenWeeks,
		"еженедельно":           types.Weekly,
	}
	for in, want := range cases {
		got, ok := recurrenceMarker(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}

	for _, in := range []string{"Ауд. 101", "Расчетно-графическая работа", "Бухучет", "Зачетная неделя", "учетная политика", "Практика"} {
		_, ok := recurrenceMarker(in)
		assert.False(t, ok, in)
	}
}

func TestCardKeepsKindNextToRecurrenceLikeWords(t *testing.T) {
	html := `<table><h5>Понедельник, 02.09.2024</h5>
<tr><td>1 пара<br>09:00<br>10:30</td><td><a class="task" data-elementid="3">Бухучет<br>Расчетно-графическая работа<br>Ауд. 101</a></td></tr>
</table>`
	lessons, err := Parser{}.Card(html)
	require.NoError(t, err)
	require.Len(t, lessons, 1)
	assert.Equal(t, "Расчетно-графическая работа", lessons[0].Kind)
	assert.Equal(t, "Ауд. 101", lessons[0].Location)
	assert.Equal(t, types.Once, lessons[0].Recurrence)
}

func TestSelectionFromURL(t *testing.T) {
	assert.Equal(t, "15.14д-гг01/24м", SelectionFromURL("https://rasp.rea.ru/?q=15.14%D0%B4-%D0%B3%D0%B301%2F24%D0%BC"))
	assert.Equal(t, "", SelectionFromURL("https://rasp.rea.ru/"))
	assert.Equal(t, "", SelectionFromURL(""))
	assert.Equal(t, "a+b", SelectionFromURL("https://rasp.rea.ru/?q=a+b"))
	assert.Equal(t, "15.14%zz", SelectionFromURL("https://rasp.rea.ru/?q=15.14%zz"))
	assert.Equal(t, "x", SelectionFromURL("https://rasp.rea.ru/?week=5&q=x#top"))
}

func TestCleanLocation(t *testing.T) {
	assert.Equal(t, "Корпус 3 ауд. 305", CleanLocation([]string{"Корпус 3\n", "  ауд.   305 "}))
}
