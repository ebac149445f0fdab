package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/zenem/zenem/internal/api"
	"github.com/zenem/zenem/internal/events"
	"github.com/zenem/zenem/internal/notify"
	"github.com/zenem/zenem/internal/wizard"
)

// JobSetupOptions holds flags for the job setup command
type JobSetupOptions struct {
	Name              string   // Name of a new job
	JobID             string   // Existing job to edit instead of creating one
	Projects          []string // Project filter values
	IssueTypes        []string // Issue type filter values
	From              string   // Extract items updated on or after this date
	To                string   // Extract items updated on or before this date
	JQL               string   // Extra JQL clause
	AcceptSuggestions bool     // Map every unmapped field to its suggestion
	Preview           bool     // Show sample records after the test
	Activate          bool     // Activate the job after a successful test
}

// Validate checks JobSetupOptions for validity
func (opts JobSetupOptions) Validate() error {
	if opts.JobID == "" && strings.TrimSpace(opts.Name) == "" {
		return fmt.Errorf("either --name (new job) or --job (existing job) is required")
	}
	if opts.JobID != "" && opts.Name != "" {
		return fmt.Errorf("--name and --job are mutually exclusive")
	}
	return nil
}

// Filters merges the filter flags over base
func (opts JobSetupOptions) Filters(base wizard.Filters) wizard.Filters {
	f := base
	if ps := parseList(opts.Projects); len(ps) > 0 {
		f.Projects = ps
	}
	if ts := parseList(opts.IssueTypes); len(ts) > 0 {
		f.IssueTypes = ts
	}
	if opts.From != "" {
		f.DateFrom = opts.From
	}
	if opts.To != "" {
		f.DateTo = opts.To
	}
	if opts.JQL != "" {
		f.JQL = opts.JQL
	}
	return f
}

func newConnectorJobCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "job",
		Aliases: []string{"jobs"},
		Short:   "List and set up a connector's sync jobs",
	}

	cmd.AddCommand(
		newJobListCmd(a),
		newJobSetupCmd(a),
	)

	return cmd
}

func newJobListCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list <connector-id>",
		Short: "List a connector's jobs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.session()
			if err != nil {
				return err
			}
			defer s.Close()

			jobs, err := s.Client.ListJobs(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			displayJobs(cmd.OutOrStdout(), jobs)
			return nil
		},
	}
}

func newJobSetupCmd(a *App) *cobra.Command {
	var opts JobSetupOptions

	cmd := &cobra.Command{
		Use:   "setup <connector-id>",
		Short: "Create or edit a job: filters, field discovery, mappings, test, activate",
		Long: `Setup walks a job through every step of its configuration:

  create → filters → discovery → mappings → test → activate

A new job needs --name; --job edits an existing one and keeps its saved
filters unless filter flags are given. Mandatory fields must be mapped
before the test runs; --accept-suggestions maps every unmapped field to the
backend's suggestion. The job stays a draft unless --activate is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.Validate(); err != nil {
				return err
			}
			return a.RunJobSetup(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.Name, "name", "", "Name of the new job")
	cmd.Flags().StringVar(&opts.JobID, "job", "", "ID of an existing job to edit")
	cmd.Flags().StringSliceVar(&opts.Projects, "project", nil, "Project to extract (repeatable)")
	cmd.Flags().StringSliceVar(&opts.IssueTypes, "issue-type", nil, "Issue type to extract (repeatable)")
	cmd.Flags().StringVar(&opts.From, "from", "", "Only items updated on or after this date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&opts.To, "to", "", "Only items updated on or before this date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&opts.JQL, "jql", "", "Additional JQL filter")
	cmd.Flags().BoolVar(&opts.AcceptSuggestions, "accept-suggestions", false, "Map unmapped fields to suggested sources")
	cmd.Flags().BoolVar(&opts.Preview, "preview", false, "Show sample records after a successful test")
	cmd.Flags().BoolVar(&opts.Activate, "activate", false, "Activate the job after a successful test")

	return cmd
}

// RunJobSetup drives the job wizard non-interactively
func (a *App) RunJobSetup(cmd *cobra.Command, connectorID string, opts JobSetupOptions) error {
	s, err := a.session()
	if err != nil {
		return err
	}
	defer s.Close()

	out := cmd.OutOrStdout()
	s.Events.Subscribe(wizardProgress(out))

	// Interrupting cancels ctx, which stops discovery polling
	ctx, stop := withSignals(cmd.Context())
	defer stop()

	w, err := openWizard(ctx, s, connectorID, opts)
	if err != nil {
		return a.wizardFailed(ctx, s, connectorID, err)
	}
	defer w.Close()

	if err := runWizard(ctx, w, out, opts); err != nil {
		return a.wizardFailed(ctx, s, connectorID, err)
	}

	st := w.Snapshot()
	if st.Step == wizard.StepDone {
		s.Notifier.Notify(ctx, notify.Success("Job activated", st.JobName).
			With("connector", connectorID).With("job", st.JobID))
		displayJobs(out, st.Jobs)
		return nil
	}
	fmt.Fprintf(out, "Job %s saved as draft; rerun with --job %s --activate to activate it\n", st.JobID, st.JobID)
	return nil
}

func (a *App) wizardFailed(ctx context.Context, s *Session, connectorID string, err error) error {
	s.Notifier.Notify(ctx, notify.Failure("Job setup failed", err).With("connector", connectorID))
	return err
}

func openWizard(ctx context.Context, s *Session, connectorID string, opts JobSetupOptions) (*wizard.Wizard, error) {
	if opts.JobID == "" {
		w := wizard.New(s.Client, connectorID, s.WizardOptions())
		if err := w.Create(ctx, opts.Name); err != nil {
			return nil, err
		}
		return w, nil
	}

	job, err := s.Client.GetJob(ctx, connectorID, opts.JobID)
	if err != nil {
		return nil, fmt.Errorf("load job %s: %w", opts.JobID, err)
	}
	return wizard.ForExistingJob(ctx, s.Client, connectorID, *job, s.WizardOptions())
}

// runWizard walks w from Filters to Activate (or to Test without --activate)
func runWizard(ctx context.Context, w *wizard.Wizard, out io.Writer, opts JobSetupOptions) error {
	st := w.Snapshot()
	fmt.Fprintf(out, "Job %s (%s)\n", st.JobName, st.JobID)

	// An edited job keeps its saved filters where no flag overrides them
	if err := w.SaveFilters(ctx, opts.Filters(st.Filters)); err != nil {
		return err
	}

	if err := w.EnterDiscovery(ctx); err != nil {
		return err
	}
	if err := w.WaitDiscovery(ctx); err != nil {
		return err
	}
	if err := w.Next(); err != nil {
		return err
	}

	if err := w.LoadSuggestions(ctx); err != nil {
		return err
	}
	if opts.AcceptSuggestions {
		if err := w.AcceptSuggestions(ctx); err != nil {
			return err
		}
	}
	if err := w.Next(); err != nil {
		if errors.Is(err, wizard.ErrMappingsIncomplete) {
			return fmt.Errorf("%w: %s unmapped (try --accept-suggestions)", err,
				strings.Join(unmappedFields(w.Snapshot()), ", "))
		}
		return err
	}

	if err := w.RunTest(ctx); err != nil {
		return err
	}
	res := w.Snapshot().TestResult
	displayTestResult(out, res)
	if !res.Success {
		return fmt.Errorf("job test failed")
	}
	if opts.Preview {
		if err := w.Preview(ctx); err != nil {
			return err
		}
		displayPreview(out, w.Snapshot().TestResult)
	}

	if !opts.Activate {
		return nil
	}
	if err := w.Next(); err != nil {
		return err
	}
	return w.Activate(ctx)
}

// unmappedFields lists mandatory fields without a mapping
func unmappedFields(st wizard.State) []string {
	mapped := make(map[string]bool, len(st.Mappings))
	for _, m := range st.Mappings {
		if m.SourceField != "" {
			mapped[m.ZenemField] = true
		}
	}
	var missing []string
	for _, rf := range st.RequiredFields {
		if rf.Mandatory && !mapped[rf.ZenemField] {
			missing = append(missing, rf.ZenemField)
		}
	}
	return missing
}

// wizardProgress prints a line per wizard milestone
func wizardProgress(out io.Writer) events.Handler {
	lastPct := -1
	return func(e events.Event) {
		switch e.Type {
		case events.WizardStepChanged:
			fmt.Fprintf(out, "→ %v\n", e.Payload)
		case events.WizardDiscoveryProgress:
			st, ok := e.Payload.(api.DiscoveryStatus)
			if !ok || st.Progress == lastPct {
				return
			}
			lastPct = st.Progress
			fmt.Fprintf(out, "  discovery %s %s, %d fields\n",
				st.Status, RenderProgressBar(float64(st.Progress), 20), st.FieldsDiscovered)
		case events.WizardDiscoveryCompleted:
			fmt.Fprintf(out, "  discovered %v fields\n", e.Payload)
		case events.WizardMappingsSaved:
			fmt.Fprintf(out, "  saved %v mappings\n", e.Payload)
		}
	}
}

func displayTestResult(w io.Writer, res *api.JobTestResult) {
	if res == nil {
		return
	}
	symbol := SymbolComplete
	if !res.Success {
		symbol = SymbolFailed
	}
	fmt.Fprintf(w, "%s test: %s records found in %dms\n", symbol, humanize.Comma(int64(res.RecordsFound)), res.DurationMs)
	for _, e := range res.Errors {
		fmt.Fprintf(w, "  error: %s\n", e)
	}
	for _, warn := range res.Warnings {
		fmt.Fprintf(w, "  warning: %s\n", warn)
	}
}

// displayPreview prints sample records one per line with sorted keys
func displayPreview(w io.Writer, res *api.JobTestResult) {
	if res == nil || len(res.SampleRecords) == 0 {
		fmt.Fprintln(w, "  no sample records")
		return
	}
	for i, rec := range res.SampleRecords {
		keys := make([]string, 0, len(rec))
		for k := range rec {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for j, k := range keys {
			parts[j] = fmt.Sprintf("%s=%v", k, rec[k])
		}
		fmt.Fprintf(w, "  %d. %s\n", i+1, strings.Join(parts, " "))
	}
}

// displayJobs renders a list of jobs in tabular format using tabwriter.
// Columns: ID, Name, Status, Schedule, Last run
func displayJobs(w io.Writer, jobs []api.Job) {
	tw := newTable(w)
	defer tw.Flush()

	fmt.Fprintln(tw, "ID\tNAME\tSTATUS\tSCHEDULE\tLAST RUN")
	for _, j := range jobs {
		schedule := j.Schedule
		if schedule == "" {
			schedule = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", j.ID, j.Name, j.Status, schedule, formatTimestamp(j.LastRunAt))
	}
}
