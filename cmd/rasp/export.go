package main

import (
	"fmt"
	"os"

	"github.com/quesurifn/rasp-ics/calendar"
	"github.com/quesurifn/rasp-ics/pkg/msk"
	"github.com/quesurifn/rasp-ics/schedule"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var exportOpts struct {
	url           string
	group         string
	output        string
	target        string
	weeks         []int
	repeat        bool
	semesterStart string
	semesterEnd   string
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the group schedule to an .ics file",
	RunE: func(cmd *cobra.Command, args []string) error {
		target, err := calendar.ParseTarget(exportOpts.target)
		if err != nil {
			return err
		}

		window := schedule.SemesterWindow(msk.Now())
		if exportOpts.semesterStart != "" {
			if window.From, err = msk.ParseDate(exportOpts.semesterStart); err != nil {
				return fmt.Errorf("--semester-start: %w", err)
			}
		}
		if exportOpts.semesterEnd != "" {
			if window.To, err = msk.ParseDate(exportOpts.semesterEnd); err != nil {
				return fmt.Errorf("--semester-end: %w", err)
			}
		}

		svc, err := newService(exportOpts.weeks, false)
		if err != nil {
			return err
		}
		defer svc.Close()

		url, group := selection(exportOpts.url, exportOpts.group)
		lessons, err := svc.Fetch(cmd.Context(), url, group)
		if err != nil {
			return err
		}
		lessons = schedule.Expand(lessons, window, schedule.ExpandOptions{RepeatOnce: exportOpts.repeat})
		if len(lessons) == 0 {
			return fmt.Errorf("%w between %s and %s", schedule.ErrNoLessons,
				window.From.Format("2006-01-02"), window.To.Format("2006-01-02"))
		}

		body, err := newRenderer().Render(lessons, target)
		if err != nil {
			return err
		}

		output := exportOpts.output
		if output == "" {
			output = calendar.FileName(label(url, group), target)
		}
		if err := os.WriteFile(output, body, 0o644); err != nil {
			return fmt.Errorf("write calendar: %w", err)
		}

		logger.Info("export", zap.String("file", output), zap.Int("events", len(lessons)), zap.String("target", string(target)))
		fmt.Fprintf(cmd.OutOrStdout(), "Saved %d events to %s\n", len(lessons), output)
		return nil
	},
}

func init() {
	f := exportCmd.Flags()
	f.StringVar(&exportOpts.url, "url", "", "schedule page url with a ?q= group selection")
	f.StringVar(&exportOpts.group, "group", "", "group code, e.g. 15.14д-гг01/24м")
	f.StringVarP(&exportOpts.output, "output", "o", "", "output file (default schedule_<group>.ics)")
	f.StringVar(&exportOpts.target, "target", string(calendar.Mobile), "calendar flavour: mobile or google")
	f.IntSliceVar(&exportOpts.weeks, "weeks", nil, "site week numbers to fetch (default current week)")
	f.BoolVar(&exportOpts.repeat, "repeat", false, "repeat one-off lessons weekly over the semester")
	f.StringVar(&exportOpts.semesterStart, "semester-start", "", "first day of the window, YYYY-MM-DD")
	f.StringVar(&exportOpts.semesterEnd, "semester-end", "", "last day of the window, YYYY-MM-DD")
}
