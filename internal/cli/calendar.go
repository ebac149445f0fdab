package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/zenem/zenem/internal/calendar"
	"github.com/zenem/zenem/internal/logging"
)

// NewCalendarCmd creates the calendar command
func NewCalendarCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calendar [year] [month]",
		Short: "Show a month of holidays, leave, sprints and releases",
		Long: `Calendar draws a Monday-first month grid and lists the month's events.
Without arguments the current month is shown; a single argument is the month
of the current year.`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			now := time.Now()
			year, month, err := parseMonthArgs(args, now)
			if err != nil {
				return err
			}

			s, err := a.session()
			if err != nil {
				return err
			}
			defer s.Close()

			evs, err := s.Client.GetCalendarMonth(cmd.Context(), year, int(month))
			if err != nil {
				return err
			}

			buckets, dateErrs := calendar.ExpandEvents(evs)
			log := logging.Get("calendar")
			for _, e := range dateErrs {
				log.Warning(e.Error())
			}

			grid := calendar.BuildMonthGrid(year, month)
			fmt.Fprint(cmd.OutOrStdout(), calendar.Render(grid, buckets, calendar.DefaultStyles(), now.Format(calendar.DateLayout)))
			return nil
		},
	}

	return cmd
}

// parseMonthArgs resolves [year] [month] or [month] against now
func parseMonthArgs(args []string, now time.Time) (int, time.Month, error) {
	year, month := now.Year(), now.Month()
	switch len(args) {
	case 1:
		m, err := parseIntArg("month", args[0], 1, 12)
		if err != nil {
			return 0, 0, err
		}
		month = time.Month(m)
	case 2:
		y, err := parseIntArg("year", args[0], 1, 9999)
		if err != nil {
			return 0, 0, err
		}
		m, err := parseIntArg("month", args[1], 1, 12)
		if err != nil {
			return 0, 0, err
		}
		year, month = y, time.Month(m)
	}
	return year, month, nil
}
