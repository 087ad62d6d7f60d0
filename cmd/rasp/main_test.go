package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	h "github.com/quesurifn/rasp-ics/handlers"
	"github.com/quesurifn/rasp-ics/schedule"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const siteCard = `
<table>
	<h5>Среда 10.01.2024</h5>
	<tr>
		<td>1 пара<br>09:00<br>10:30</td>
		<td><a class="task" data-elementid="1">Информатика<br>Лекция<br>Ауд. 101<br>еженедельно</a></td>
	</tr>
</table>`

func fakeSite(t *testing.T, card string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/Schedule/ScheduleCard", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(card))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(append(args, "--config", filepath.Join(t.TempDir(), "missing.yml")))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestExportWritesCalendar(t *testing.T) {
	site := fakeSite(t, siteCard)
	cfg = appConfig{}
	cfg.Schedule.BaseURL = site.URL

	output := filepath.Join(t.TempDir(), "out.ics")
	out, err := run(t, "export", "--group", "15.14д-гг01/24м", "--output", output, "--target", "google",
		"--semester-start", "2024-01-01", "--semester-end", "2024-01-31")
	require.NoError(t, err)
	assert.Contains(t, out, "Saved 5 events")

	body, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, 5, strings.Count(string(body), "BEGIN:VEVENT"))
	assert.Contains(t, string(body), "DTSTART:20240103T060000Z")
}

func TestExportFailsWithoutLessons(t *testing.T) {
	site := fakeSite(t, "<html></html>")
	cfg = appConfig{}
	cfg.Schedule.BaseURL = site.URL

	_, err := run(t, "export", "--group", "x", "--output", filepath.Join(t.TempDir(), "out.ics"))
	assert.ErrorIs(t, err, schedule.ErrNoLessons)
}

func TestWeekPrintsText(t *testing.T) {
	site := fakeSite(t, siteCard)
	cfg = appConfig{}
	cfg.Schedule.BaseURL = site.URL

	out, err := run(t, "week", "--group", "15.14д-гг01/24м", "--date", "2024-01-17")
	require.NoError(t, err)
	assert.Contains(t, out, "Группа: 15.14д-гг01/24м")
	assert.Contains(t, out, "Среда, 17.01")
}

func TestNewAppServesRoot(t *testing.T) {
	cfg = appConfig{}
	cfg.Server.RateLimit = 5
	app := newApp(h.Handlers{Logger: logger})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestSelectionDefaults(t *testing.T) {
	cfg = appConfig{}
	cfg.Schedule.Group = "default"

	url, group := selection("", "")
	assert.Empty(t, url)
	assert.Equal(t, "default", group)

	url, group = selection("https://rasp.rea.ru/?q=abc", "")
	assert.Equal(t, "https://rasp.rea.ru/?q=abc", url)
	assert.Empty(t, group)
	assert.Equal(t, "abc", label(url, group))
}
