package main

import (
	"fmt"

	"github.com/quesurifn/rasp-ics/pkg/msk"
	"github.com/quesurifn/rasp-ics/schedule"
	"github.com/spf13/cobra"
)

var weekOpts struct {
	url   string
	group string
	date  string
}

var weekCmd = &cobra.Command{
	Use:   "week",
	Short: "Print the weekly schedule as text",
	RunE: func(cmd *cobra.Command, args []string) error {
		ref := msk.Now()
		if weekOpts.date != "" {
			d, err := msk.ParseDate(weekOpts.date)
			if err != nil {
				return fmt.Errorf("--date: %w", err)
			}
			ref = d
		}

		svc, err := newService(nil, false)
		if err != nil {
			return err
		}
		defer svc.Close()

		url, group := selection(weekOpts.url, weekOpts.group)
		lessons, err := svc.Fetch(cmd.Context(), url, group)
		if err != nil {
			return err
		}
		lessons = schedule.Expand(lessons, schedule.SemesterWindow(ref), schedule.ExpandOptions{})
		fmt.Fprintln(cmd.OutOrStdout(), schedule.FormatWeek(label(url, group), lessons, ref))
		return nil
	},
}

func init() {
	weekCmd.Flags().StringVar(&weekOpts.url, "url", "", "schedule page url with a ?q= group selection")
	weekCmd.Flags().StringVar(&weekOpts.group, "group", "", "group code")
	weekCmd.Flags().StringVar(&weekOpts.date, "date", "", "any day of the week to show, YYYY-MM-DD")
}
