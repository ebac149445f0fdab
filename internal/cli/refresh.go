package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/zenem/zenem/internal/api"
	"github.com/zenem/zenem/internal/cli/tui"
	"github.com/zenem/zenem/internal/events"
	"github.com/zenem/zenem/internal/logging"
	"github.com/zenem/zenem/internal/notify"
	"github.com/zenem/zenem/internal/refresh"
)

// RefreshOptions holds flags for the refresh command
type RefreshOptions struct {
	Targets     []string // Targets to refresh (default: suggestions for Context)
	Connections []string // Restrict to these connection IDs
	Context     string   // UI context used to fetch suggested targets
	Yes         bool     // Start without confirmation
	NoTUI       bool     // Disable TUI even when stdout is a TTY
}

// Selection builds the refresh selection on top of base.
func (opts RefreshOptions) Selection(base refresh.Selection) refresh.Selection {
	sel := base
	if ts := parseList(opts.Targets); len(ts) > 0 {
		sel.Targets = make([]refresh.Target, 0, len(ts))
		for _, t := range ts {
			sel.Targets = append(sel.Targets, refresh.Target(strings.ToUpper(t)))
		}
	}
	if cs := parseList(opts.Connections); len(cs) > 0 {
		sel.ConnectionIDs = cs
	}
	return sel
}

// NewRefreshCmd creates the refresh command group
func NewRefreshCmd(a *App) *cobra.Command {
	var opts RefreshOptions

	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Refresh backend data from connected systems",
		Long: `Refresh selects targets (epics, teammates, calendar, ...), shows the
backend's estimate, starts the refresh and follows its progress.

On a terminal an interactive screen is shown. Use --yes or --no-tui for
plain output, e.g. in scripts:

  zenem refresh --target epics --target sprints --yes`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.RunRefresh(cmd, opts)
		},
	}

	cmd.Flags().StringSliceVarP(&opts.Targets, "target", "t", nil, "Target to refresh (repeatable)")
	cmd.Flags().StringSliceVar(&opts.Connections, "connection", nil, "Connection ID to refresh from (repeatable)")
	cmd.Flags().StringVar(&opts.Context, "context", "", "Context used to suggest targets (e.g. epics, calendar)")
	cmd.Flags().BoolVarP(&opts.Yes, "yes", "y", false, "Start without asking for confirmation")
	cmd.Flags().BoolVar(&opts.NoTUI, "no-tui", false, "Disable interactive TUI")

	cmd.AddCommand(
		newRefreshStatusCmd(a),
		newRefreshWatchCmd(a),
		newRefreshCancelCmd(a),
		newRefreshActiveCmd(a),
	)

	return cmd
}

// RunRefresh selects, starts and follows a refresh
func (a *App) RunRefresh(cmd *cobra.Command, opts RefreshOptions) error {
	s, err := a.session()
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, stop := withSignals(cmd.Context())
	defer stop()

	ctrl := s.RefreshController()
	defer ctrl.Shutdown()
	go ctrl.Run(ctx)

	useTUI := !opts.NoTUI && !opts.Yes && isTerminal(cmd.OutOrStdout())
	if useTUI {
		return a.runRefreshTUI(ctx, s, ctrl, opts)
	}
	return a.runRefreshPlain(ctx, cmd, s, ctrl, opts)
}

func (a *App) runRefreshTUI(ctx context.Context, s *Session, ctrl *refresh.Controller, opts RefreshOptions) error {
	model := tui.NewModel(ctx, ctrl, opts.Context)
	program := tea.NewProgram(model, tea.WithAltScreen())

	bridge := tui.NewBridge(program)
	s.Events.Subscribe(bridge.Handler())

	// An interrupt quits the program normally so the terminal is restored
	exited := make(chan struct{})
	defer close(exited)
	go func() {
		select {
		case <-ctx.Done():
			bridge.SendQuit()
		case <-exited:
		}
	}()

	// Logs go to the TUI's log panel while it owns the terminal
	logs := tui.NewLogWriter(program)
	if err := logging.Init(s.Config.LogLevel, logs); err != nil {
		return err
	}
	defer func() {
		logs.Close()
		logging.Init(s.Config.LogLevel, a.logOut)
	}()

	if len(opts.Targets) > 0 || len(opts.Connections) > 0 {
		// Preselect after Open has applied any suggestions
		s.Events.Subscribe(preselect(ctx, ctrl, opts))
	}

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("refresh TUI: %w", err)
	}

	if r := model.Result(); r != nil {
		return finishRefresh(ctx, s.Notifier, r)
	}
	return nil
}

// preselect applies flag selections once the selection view has loaded.
func preselect(ctx context.Context, ctrl *refresh.Controller, opts RefreshOptions) events.Handler {
	done := false
	return func(e events.Event) {
		if done || e.Type != events.RefreshLoaded {
			return
		}
		done = true
		go ctrl.UpdateSelection(ctx, opts.Selection(ctrl.Snapshot().Selection))
	}
}

func (a *App) runRefreshPlain(ctx context.Context, cmd *cobra.Command, s *Session, ctrl *refresh.Controller, opts RefreshOptions) error {
	out := cmd.OutOrStdout()

	estimated := make(chan struct{}, 1)
	s.Events.Subscribe(func(e events.Event) {
		if e.Type == events.RefreshEstimated || (e.Type == events.RefreshFailed && e.Subject == "") {
			select {
			case estimated <- struct{}{}:
			default:
			}
		}
	})

	ctrl.Open(ctx, opts.Context)
	st := ctrl.Snapshot()
	if st.Error != "" {
		err := errors.New(st.Error)
		s.Notifier.Notify(ctx, notify.Failure("Could not load refresh options", err))
		return err
	}

	sel := opts.Selection(st.Selection)
	ctrl.UpdateSelection(ctx, sel)
	if len(sel.Targets) == 0 {
		displayTargetOptions(out, st.TargetOptions)
		return errors.New(refresh.NoTargetsMessage)
	}

	fmt.Fprintf(out, "Targets: %s\n", joinTargets(sel.Targets))
	select {
	case <-estimated:
		if st := ctrl.Snapshot(); st.Estimate != nil {
			displayEstimate(out, st.Estimate)
		} else {
			fmt.Fprintf(out, "Estimate unavailable: %s\n", st.Error)
		}
	case <-time.After(s.Durations.EstimateDelay + 5*time.Second):
		fmt.Fprintln(out, "Estimate unavailable")
	case <-ctx.Done():
		return ctx.Err()
	}

	if !opts.Yes && !confirm(cmd.InOrStdin(), out, "Start refresh?") {
		fmt.Fprintln(out, "Aborted")
		return nil
	}

	final, err := followRefresh(ctx, s.Events, out, func() (string, error) {
		id := ctrl.Start(ctx)
		if id == "" {
			err := errors.New(ctrl.Snapshot().Error)
			s.Notifier.Notify(ctx, notify.Failure("Refresh not started", err))
			return "", err
		}
		fmt.Fprintf(out, "Started refresh %s\n", id)
		return id, nil
	})
	if err != nil {
		return err
	}
	return finishRefresh(ctx, s.Notifier, final)
}

// followRefresh prints progress of the run a controller monitors until it
// reaches a terminal status. start begins monitoring once the handlers are
// subscribed and returns the orchestration ID. A controller follows one run
// at a time, so every refresh event carrying a subject belongs to it.
func followRefresh(ctx context.Context, bus *events.Bus, out io.Writer, start func() (string, error)) (*api.RefreshStatusResponse, error) {
	type outcome struct {
		status *api.RefreshStatusResponse
		err    error
	}
	done := make(chan outcome, 1)
	finish := func(o outcome) {
		select {
		case done <- o:
		default:
		}
	}

	var last api.RefreshStatus
	var lastPct float64 = -1
	bus.Subscribe(func(e events.Event) {
		if e.Subject == "" {
			return
		}
		id := e.Subject
		switch e.Type {
		case events.RefreshProgress:
			st, ok := e.Payload.(api.RefreshStatusResponse)
			if !ok || (st.Status == last && st.OverallProgress == lastPct) {
				return
			}
			last, lastPct = st.Status, st.OverallProgress
			fmt.Fprintf(out, "%s %-11s %s\n", GetStatusSymbol(st.Status), st.Status, RenderProgressBar(st.OverallProgress, 30))
		case events.RefreshCompleted:
			st, _ := e.Payload.(api.RefreshStatusResponse)
			finish(outcome{status: &st})
		case events.RefreshFailed:
			finish(outcome{err: fmt.Errorf("monitor refresh %s: %s", id, e.Error)})
		case events.RefreshCancelled:
			finish(outcome{status: &api.RefreshStatusResponse{OrchestrationID: id, Status: api.StatusCancelled}})
		}
	})
	if _, err := start(); err != nil {
		return nil, err
	}

	select {
	case o := <-done:
		return o.status, o.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// finishRefresh toasts the outcome and turns failure into an error.
func finishRefresh(ctx context.Context, n notify.Notifier, st *api.RefreshStatusResponse) error {
	switch st.Status {
	case api.StatusCompleted:
		n.Notify(ctx, notify.Success("Refresh completed", fmt.Sprintf("%d targets refreshed", len(st.Targets))).
			With("orchestration", st.OrchestrationID))
		return nil
	case api.StatusCancelled:
		n.Notify(ctx, notify.New(notify.LevelWarning, "Refresh cancelled", "").
			With("orchestration", st.OrchestrationID))
		return nil
	default:
		err := fmt.Errorf("refresh %s %s", st.OrchestrationID, strings.ToLower(string(st.Status)))
		if len(st.Errors) > 0 {
			err = fmt.Errorf("%w: %s", err, strings.Join(st.Errors, "; "))
		}
		n.Notify(ctx, notify.Failure("Refresh failed", err).With("orchestration", st.OrchestrationID))
		return err
	}
}

func newRefreshStatusCmd(a *App) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "status <orchestration-id>",
		Short: "Show the status of a refresh",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.session()
			if err != nil {
				return err
			}
			defer s.Close()

			st, err := s.Client.GetRefreshStatus(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if jsonOut {
				return events.NewJSONEmitter(cmd.OutOrStdout()).Emit(
					events.NewEvent(events.RefreshProgress, st.OrchestrationID).WithPayload(*st))
			}
			displayStatus(cmd.OutOrStdout(), st)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func newRefreshWatchCmd(a *App) *cobra.Command {
	var jsonOut, trace bool

	cmd := &cobra.Command{
		Use:   "watch <orchestration-id>",
		Short: "Follow a refresh until it finishes",
		Long: `Watch streams progress of a running refresh, falling back to polling
when the event stream is unavailable.

With --json (or when stdout is not a terminal) every event is written as
one JSON object per line.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.session()
			if err != nil {
				return err
			}
			defer s.Close()

			ctx, stop := withSignals(cmd.Context())
			defer stop()

			id := args[0]
			ctrl := s.RefreshController()
			defer ctrl.Shutdown()

			out := cmd.OutOrStdout()
			if trace {
				s.Events.Subscribe(events.LogHandler(events.LogConfig{Writer: cmd.ErrOrStderr(), IncludePayload: true}))
			}
			progressOut := out
			if events.IsJSONMode(jsonOut) {
				s.Events.Subscribe(events.JSONEmitterHandler(events.NewJSONEmitter(out)))
				progressOut = io.Discard
			}

			final, err := followRefresh(ctx, s.Events, progressOut, func() (string, error) {
				ctrl.Monitor(ctx, id)
				return id, nil
			})
			if err != nil {
				return err
			}
			if progressOut != io.Discard {
				displayStatus(out, final)
			}
			return finishRefresh(ctx, s.Notifier, final)
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit events as JSON lines")
	cmd.Flags().BoolVar(&trace, "trace", false, "Print every event to stderr")
	return cmd
}

func newRefreshCancelCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <orchestration-id>",
		Short: "Cancel a running refresh",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.session()
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.Client.CancelRefresh(cmd.Context(), args[0]); err != nil {
				s.Notifier.Notify(cmd.Context(), notify.Failure("Cancel failed", err).With("orchestration", args[0]))
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cancelled refresh %s\n", args[0])
			return nil
		},
	}
}

func newRefreshActiveCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "active",
		Short: "List refreshes that are still running",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.session()
			if err != nil {
				return err
			}
			defer s.Close()

			runs, err := s.Client.GetActiveRefreshes(cmd.Context())
			if err != nil {
				return err
			}
			displayActive(cmd.OutOrStdout(), runs)
			return nil
		},
	}
}

// displayTargetOptions lists what can be passed to --target
func displayTargetOptions(w io.Writer, options []api.TargetOption) {
	tw := newTable(w)
	defer tw.Flush()

	fmt.Fprintln(tw, "TARGET\tLABEL\tAVAILABLE\tDESCRIPTION")
	for _, o := range options {
		fmt.Fprintf(tw, "%s\t%s\t%t\t%s\n", o.Target, o.Label, o.Available, o.Description)
	}
}

func joinTargets(ts []refresh.Target) string {
	parts := make([]string, len(ts))
	for i, t := range ts {
		parts[i] = string(t)
	}
	return strings.Join(parts, ", ")
}

// parseList splits comma-separated values and trims whitespace
func parseList(values []string) []string {
	result := make([]string, 0, len(values))
	for _, v := range values {
		for _, p := range strings.Split(v, ",") {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
	}
	return result
}

// confirm asks a yes/no question on in; anything but y/yes is no
func confirm(in io.Reader, out io.Writer, question string) bool {
	fmt.Fprintf(out, "%s [y/N] ", question)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

// isTerminal reports whether w is an interactive terminal
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
