package schedule

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/quesurifn/rasp-ics/pkg/msk"
	t "github.com/quesurifn/rasp-ics/types"
	"go.uber.org/zap"
)

var (
	headerDateRe = regexp.MustCompile(`(\d{2}\.\d{2}\.\d{4})`)
	clockRe      = regexp.MustCompile(`\b([01]?\d|2[0-3]):[0-5]\d\b`)
	pairRe       = regexp.MustCompile(`(\d+)\s*пара`)
	// Matched against the whole lowercased fragment with ё folded to е.
	recurrenceRe = regexp.MustCompile(`^\(?\s*(?:(?:по\s+)?(не)?четн\S*\s+недел\S*|(числитель)|(знаменатель)|(еженедельно|каждую\s+неделю))\s*\)?$`)
)

type Parser struct {
	Logger *zap.Logger
}

func (p Parser) log() *zap.Logger {
	if p.Logger == nil {
		return zap.NewNop()
	}
	return p.Logger
}

// Card extracts lessons from a schedule card. The card is a sequence of day
// tables, each headed by an h5 with the date, whose rows hold the time slot
// in the first cell and one a.task anchor per lesson.
func (p Parser) Card(html string) ([]t.Lesson, error) {
	if strings.TrimSpace(html) == "" {
		return nil, nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	var (
		lessons []t.Lesson
		day     time.Time
	)
	// h5 headers may be moved out of their table by the HTML parser, so the
	// document is walked in order and the last seen date applies.
	doc.Find("h5, a.task").Each(func(_ int, s *goquery.Selection) {
		if goquery.NodeName(s) == "h5" {
			text := strings.TrimSpace(s.Text())
			d, ok := parseHeaderDate(text)
			if !ok {
				p.log().Warn("Card: header without date", zap.String("header", text))
				day = time.Time{}
				return
			}
			day = d
			return
		}

		if day.IsZero() {
			p.log().Debug("Card: lesson outside of a dated table", zap.String("text", strings.TrimSpace(s.Text())))
			return
		}
		if lesson, ok := p.lesson(s, day); ok {
			lessons = append(lessons, lesson)
		}
	})

	return lessons, nil
}

func (p Parser) lesson(anchor *goquery.Selection, day time.Time) (t.Lesson, bool) {
	row := anchor.Closest("tr")
	if row.Length() == 0 {
		return t.Lesson{}, false
	}

	start, end, pair, ok := parseTimeslot(row.Find("td").First())
	if !ok {
		p.log().Info("Card: skipping row without time", zap.String("lesson", strings.TrimSpace(anchor.Text())))
		return t.Lesson{}, false
	}

	parts := strippedStrings(anchor)
	if len(parts) == 0 {
		return t.Lesson{}, false
	}

	recurrence := t.Once
	var rest []string
	for _, part := range parts[1:] {
		if r, marker := recurrenceMarker(part); marker {
			recurrence = r
			continue
		}
		rest = append(rest, part)
	}

	lesson := t.Lesson{
		Title:      parts[0],
		Pair:       pair,
		Recurrence: recurrence,
	}
	if len(rest) > 0 {
		lesson.Kind = rest[0]
	}
	if len(rest) > 1 {
		lesson.Location = CleanLocation(rest[1:])
	}
	lesson.ElementID, _ = anchor.Attr("data-elementid")

	var err error
	if lesson.Start, err = msk.Combine(day, start); err != nil {
		return t.Lesson{}, false
	}
	if lesson.End, err = msk.Combine(day, end); err != nil {
		return t.Lesson{}, false
	}
	return lesson, true
}

// Details extracts the teacher and the auxiliary notes (venue, department)
// from a lesson details popup.
func (p Parser) Details(html string) (teacher, extra string) {
	if strings.TrimSpace(html) == "" {
		return "", ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		p.log().Warn("Details", zap.Error(err))
		return "", ""
	}
	body := doc.Find("div.element-info-body").First()
	if body.Length() == 0 {
		return "", ""
	}

	var lines []string
	for _, s := range strippedStrings(body) {
		for _, line := range strings.Split(s, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				lines = append(lines, line)
			}
		}
	}
	return extractTeacher(lines), extractExtra(lines)
}

func extractTeacher(lines []string) string {
	for i, line := range lines {
		if !strings.Contains(line, "Преподаватель") {
			continue
		}
		if _, after, ok := strings.Cut(line, ":"); ok && strings.TrimSpace(after) != "" {
			return strings.TrimSpace(after)
		}
		for _, candidate := range lines[i+1:] {
			if !strings.EqualFold(candidate, "school") {
				return candidate
			}
		}
	}
	return ""
}

func extractExtra(lines []string) string {
	var extras []string
	for _, line := range lines {
		if strings.HasPrefix(line, "Площадка") || strings.HasPrefix(line, "(") {
			extras = append(extras, line)
		}
	}
	return strings.Join(extras, ", ")
}

func parseHeaderDate(text string) (time.Time, bool) {
	m := headerDateRe.FindString(text)
	if m == "" {
		return time.Time{}, false
	}
	d, err := time.ParseInLocation("02.01.2006", m, msk.Location())
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// parseTimeslot reads "N пара", start and end clocks from the time cell.
func parseTimeslot(cell *goquery.Selection) (start, end string, pair int, ok bool) {
	if cell.Length() == 0 {
		return "", "", 0, false
	}
	text := strings.Join(strippedStrings(cell), " ")
	clocks := clockRe.FindAllString(text, 2)
	if len(clocks) < 2 {
		return "", "", 0, false
	}
	if m := pairRe.FindStringSubmatch(text); m != nil {
		pair, _ = strconv.Atoi(m[1])
	}
	return clocks[0], clocks[1], pair, true
}

// CleanLocation joins location fragments and collapses whitespace.
func CleanLocation(chunks []string) string {
	return strings.Join(strings.Fields(strings.Join(chunks, " ")), " ")
}

func recurrenceMarker(s string) (t.Recurrence, bool) {
	l := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "ё", "е")
	m := recurrenceRe.FindStringSubmatch(l)
	switch {
	case m == nil:
		return t.Once, false
	case m[2] != "":
		return t.OddWeeks, true
	case m[3] != "":
		return t.EvenWeeks, true
	case m[4] != "":
		return t.Weekly, true
	case m[1] != "":
		return t.OddWeeks, true
	}
	return t.EvenWeeks, true
}

// strippedStrings returns the trimmed, non-empty text nodes below s in
// document order.
func strippedStrings(s *goquery.Selection) []string {
	var out []string
	s.Contents().Each(func(_ int, c *goquery.Selection) {
		if goquery.NodeName(c) == "#text" {
			if text := strings.TrimSpace(c.Text()); text != "" {
				out = append(out, text)
			}
			return
		}
		out = append(out, strippedStrings(c)...)
	})
	return out
}
