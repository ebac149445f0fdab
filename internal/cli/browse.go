package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zenem/zenem/internal/api"
)

// NewListCmd creates read-only listings of backend records
func NewListCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List projects, teams, teammates, sprints, releases and metadata",
	}

	var q api.PageQuery
	page := func(use, short string, run func(cmd *cobra.Command, s *Session) error) *cobra.Command {
		c := &cobra.Command{
			Use:   use,
			Short: short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				s, err := a.session()
				if err != nil {
					return err
				}
				defer s.Close()
				return run(cmd, s)
			},
		}
		addPageFlags(c, &q)
		return c
	}

	cmd.AddCommand(
		page("projects", "List projects", func(cmd *cobra.Command, s *Session) error {
			p, err := s.Client.ListProjects(cmd.Context(), q)
			if err != nil {
				return err
			}
			return writeRows(cmd.OutOrStdout(), "ID\tKEY\tNAME\tSTATUS", p.Content, func(r api.Project) []string {
				return []string{r.ID, r.Key, r.Name, r.Status}
			})
		}),
		page("teams", "List teams", func(cmd *cobra.Command, s *Session) error {
			p, err := s.Client.ListTeams(cmd.Context(), q)
			if err != nil {
				return err
			}
			return writeRows(cmd.OutOrStdout(), "ID\tNAME\tMEMBERS", p.Content, func(r api.Team) []string {
				return []string{r.ID, r.Name, strconv.Itoa(r.MemberCount)}
			})
		}),
		page("teammates", "List teammates with their roles", func(cmd *cobra.Command, s *Session) error {
			p, err := s.Client.ListTeammates(cmd.Context(), q)
			if err != nil {
				return err
			}
			return writeRows(cmd.OutOrStdout(), "ID\tNAME\tEMAIL\tROLE\tSECONDARY", p.Content, func(r api.Teammate) []string {
				return []string{r.ID, r.Name, r.Email, dash(r.PrimaryRole), dash(strings.Join(r.SecondaryRoles, ", "))}
			})
		}),
		page("sprints", "List sprints", func(cmd *cobra.Command, s *Session) error {
			p, err := s.Client.ListSprints(cmd.Context(), q)
			if err != nil {
				return err
			}
			return writeRows(cmd.OutOrStdout(), "ID\tNAME\tSTATE\tSTART\tEND", p.Content, func(r api.Sprint) []string {
				return []string{r.ID, r.Name, r.State, r.StartDate, r.EndDate}
			})
		}),
		page("releases", "List releases", func(cmd *cobra.Command, s *Session) error {
			p, err := s.Client.ListReleases(cmd.Context(), q)
			if err != nil {
				return err
			}
			return writeRows(cmd.OutOrStdout(), "ID\tNAME\tSTATUS\tDATE", p.Content, func(r api.Release) []string {
				return []string{r.ID, r.Name, r.Status, r.ReleaseDate}
			})
		}),
		page("roles", "List primary and secondary roles", func(cmd *cobra.Command, s *Session) error {
			primary, err := s.Client.GetPrimaryRoles(cmd.Context())
			if err != nil {
				return err
			}
			secondary, err := s.Client.GetSecondaryRoles(cmd.Context())
			if err != nil {
				return err
			}
			type roleRow struct {
				kind string
				role api.Role
			}
			rows := make([]roleRow, 0, len(primary)+len(secondary))
			for _, r := range primary {
				rows = append(rows, roleRow{"primary", r})
			}
			for _, r := range secondary {
				rows = append(rows, roleRow{"secondary", r})
			}
			return writeRows(cmd.OutOrStdout(), "KIND\tCODE\tNAME", rows, func(r roleRow) []string {
				return []string{r.kind, r.role.Code, r.role.DisplayName}
			})
		}),
		page("leave-types", "List leave types", func(cmd *cobra.Command, s *Session) error {
			types, err := s.Client.GetLeaveTypes(cmd.Context())
			if err != nil {
				return err
			}
			return writeRows(cmd.OutOrStdout(), "CODE\tNAME\tPAID", types, func(r api.LeaveType) []string {
				return []string{r.Code, r.Name, strconv.FormatBool(r.Paid)}
			})
		}),
	)

	return cmd
}

// writeRows renders rows under header using the shared table layout
func writeRows[T any](w io.Writer, header string, rows []T, cols func(T) []string) error {
	tw := newTable(w)
	fmt.Fprintln(tw, header)
	for _, r := range rows {
		fmt.Fprintln(tw, strings.Join(cols(r), "\t"))
	}
	return tw.Flush()
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
