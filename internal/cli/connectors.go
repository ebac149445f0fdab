package cli

import (
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/zenem/zenem/internal/api"
	"github.com/zenem/zenem/internal/notify"
)

// NewConnectorsCmd creates the connectors command group
func NewConnectorsCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "connectors",
		Aliases: []string{"connector"},
		Short:   "Inspect connectors and set up their jobs",
	}

	cmd.AddCommand(
		newConnectorsListCmd(a),
		newConnectorsCatalogCmd(a),
		newConnectorsHealthCmd(a),
		newConnectorsVerifyCmd(a),
		newConnectorsReauthorizeCmd(a),
		newConnectorsLogsCmd(a),
		newConnectorJobCmd(a),
	)

	return cmd
}

func newConnectorsListCmd(a *App) *cobra.Command {
	var q api.PageQuery

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List configured connectors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.session()
			if err != nil {
				return err
			}
			defer s.Close()

			page, err := s.Client.ListConnectors(cmd.Context(), q)
			if err != nil {
				return err
			}
			displayConnectors(cmd.OutOrStdout(), page)
			if page.TotalPages > 1 {
				fmt.Fprintf(cmd.OutOrStdout(), "\npage %d of %d (%s connectors)\n",
					page.Page+1, page.TotalPages, humanize.Comma(page.TotalElements))
			}
			return nil
		},
	}

	addPageFlags(cmd, &q)
	return cmd
}

func newConnectorsCatalogCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "List connector types that can be configured",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.session()
			if err != nil {
				return err
			}
			defer s.Close()

			entries, err := s.Client.ConnectorCatalog(cmd.Context())
			if err != nil {
				return err
			}
			return writeRows(cmd.OutOrStdout(), "TYPE\tNAME\tAUTH\tDESCRIPTION", entries, func(e api.CatalogEntry) []string {
				return []string{e.Type, e.DisplayName, dash(e.AuthType), e.Description}
			})
		},
	}
}

func newConnectorsHealthCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "health <connector-id>",
		Short: "Check a connector's health",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.session()
			if err != nil {
				return err
			}
			defer s.Close()

			h, err := s.Client.ConnectorHealth(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Connector: %s\n", args[0])
			fmt.Fprintf(out, "Health:    %s (%s)\n", boolToStatus(h.Healthy), h.Status)
			fmt.Fprintf(out, "Latency:   %dms\n", h.LatencyMs)
			if h.LastCheckedAt != "" {
				fmt.Fprintf(out, "Checked:   %s\n", formatTimestamp(h.LastCheckedAt))
			}
			if h.Message != "" {
				fmt.Fprintf(out, "Message:   %s\n", h.Message)
			}
			return nil
		},
	}
}

func newConnectorsVerifyCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "verify <connector-id>",
		Short: "Verify a connector's credentials",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.session()
			if err != nil {
				return err
			}
			defer s.Close()

			ctx := cmd.Context()
			res, err := s.Client.VerifyConnector(ctx, args[0])
			if err != nil {
				s.Notifier.Notify(ctx, notify.Failure("Verification failed", err).With("connector", args[0]))
				return err
			}
			if !res.Success {
				err := fmt.Errorf("connector %s failed verification: %s", args[0], res.Message)
				s.Notifier.Notify(ctx, notify.Failure("Verification failed", err).With("connector", args[0]))
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Connector %s verified: %s\n", args[0], res.Message)
			return nil
		},
	}
}

func newConnectorsReauthorizeCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "reauthorize <connector-id>",
		Short: "Start re-authorization of a connector",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.session()
			if err != nil {
				return err
			}
			defer s.Close()

			res, err := s.Client.ReauthorizeConnector(cmd.Context(), args[0])
			if err != nil {
				s.Notifier.Notify(cmd.Context(), notify.Failure("Re-authorization failed", err).With("connector", args[0]))
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Open this URL to re-authorize %s:\n  %s\n", args[0], res.AuthorizationURL)
			return nil
		},
	}
}

func newConnectorsLogsCmd(a *App) *cobra.Command {
	q := api.PageQuery{Size: 50}

	cmd := &cobra.Command{
		Use:   "logs <connector-id>",
		Short: "Show a connector's sync log",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.session()
			if err != nil {
				return err
			}
			defer s.Close()

			page, err := s.Client.ConnectorLogs(cmd.Context(), args[0], q)
			if err != nil {
				return err
			}
			displayLogs(cmd.OutOrStdout(), page)
			return nil
		},
	}

	addPageFlags(cmd, &q)
	return cmd
}

// addPageFlags binds --page and --size to q
func addPageFlags(cmd *cobra.Command, q *api.PageQuery) {
	cmd.Flags().IntVar(&q.Page, "page", q.Page, "Page number (0-based)")
	cmd.Flags().IntVar(&q.Size, "size", q.Size, "Page size (0 = backend default)")
}

// parseIntArg parses a positional integer argument within [lo, hi]
func parseIntArg(name, value string, lo, hi int) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil || n < lo || n > hi {
		return 0, fmt.Errorf("%s must be a number between %d and %d, got %q", name, lo, hi, value)
	}
	return n, nil
}
