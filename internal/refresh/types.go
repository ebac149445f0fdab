// Package refresh drives the data refresh workflow: choosing targets,
// debounced estimates, validation, starting an orchestration and following
// its progress until it finishes.
package refresh

import (
	"context"
	"io"
	"slices"

	"github.com/zenem/zenem/internal/api"
)

type (
	Target           = api.RefreshTarget
	Selection        = api.RefreshSelection
	Estimate         = api.RefreshEstimate
	ValidationResult = api.RefreshValidation
	StatusResponse   = api.RefreshStatusResponse
	Status           = api.RefreshStatus
	TargetProgress   = api.TargetProgress
)

// NoTargetsMessage is reported when validation is attempted without targets.
const NoTargetsMessage = "Please select at least one target to refresh"

// ValidationFailedMessage is reported when the backend rejects a selection
// without saying why.
const ValidationFailedMessage = "Refresh validation failed"

// API is the part of *api.Client the controller and progress sources use.
type API interface {
	StatusFetcher
	StreamOpener

	GetRefreshTargetOptions(ctx context.Context) ([]api.TargetOption, error)
	GetRefreshConnections(ctx context.Context) ([]api.RefreshConnection, error)
	GetRefreshDependencies(ctx context.Context) ([]api.RefreshDependency, error)
	GetConnectionHealth(ctx context.Context) ([]api.ConnectionHealth, error)
	GetRefreshSuggestions(ctx context.Context, hint string) (*api.RefreshSuggestions, error)
	EstimateRefresh(ctx context.Context, sel Selection) (*Estimate, error)
	ValidateRefresh(ctx context.Context, sel Selection) (*ValidationResult, error)
	StartRefresh(ctx context.Context, sel Selection) (*api.StartRefreshResponse, error)
	GetActiveRefreshes(ctx context.Context) ([]StatusResponse, error)
	CancelRefresh(ctx context.Context, id string) error
}

// StatusFetcher fetches the current status of an orchestration.
type StatusFetcher interface {
	GetRefreshStatus(ctx context.Context, id string) (*StatusResponse, error)
}

// StreamOpener opens the progress event stream of an orchestration.
type StreamOpener interface {
	OpenProgressStream(ctx context.Context, id string) (io.ReadCloser, error)
}

// CurrentRefresh is the orchestration being monitored.
type CurrentRefresh struct {
	OrchestrationID string
	Status          *StatusResponse
}

// State is a point-in-time copy of a controller's state.
type State struct {
	IsOpen  bool
	Loading bool

	Selection   Selection
	Estimate    *Estimate
	Validation  *ValidationResult
	Suggestions *api.RefreshSuggestions

	TargetOptions []api.TargetOption
	Connections   []api.RefreshConnection
	Dependencies  []api.RefreshDependency
	Health        []api.ConnectionHealth

	CurrentRefresh *CurrentRefresh
	ActiveCount    int

	Error      string
	Estimating bool
	Starting   bool
}

func (s State) clone() State {
	out := s
	out.Selection = cloneSelection(s.Selection)
	out.TargetOptions = slices.Clone(s.TargetOptions)
	out.Connections = slices.Clone(s.Connections)
	out.Dependencies = slices.Clone(s.Dependencies)
	out.Health = slices.Clone(s.Health)
	if s.Estimate != nil {
		est := *s.Estimate
		est.Warnings = slices.Clone(est.Warnings)
		out.Estimate = &est
	}
	if s.Validation != nil {
		v := *s.Validation
		v.Errors = slices.Clone(v.Errors)
		v.Warnings = slices.Clone(v.Warnings)
		out.Validation = &v
	}
	if s.Suggestions != nil {
		sg := *s.Suggestions
		sg.SuggestedTargets = slices.Clone(sg.SuggestedTargets)
		out.Suggestions = &sg
	}
	if s.CurrentRefresh != nil {
		cr := *s.CurrentRefresh
		if cr.Status != nil {
			st := cloneStatus(*cr.Status)
			cr.Status = &st
		}
		out.CurrentRefresh = &cr
	}
	return out
}

func cloneStatus(st StatusResponse) StatusResponse {
	st.Targets = slices.Clone(st.Targets)
	st.Errors = slices.Clone(st.Errors)
	st.Warnings = slices.Clone(st.Warnings)
	return st
}

func cloneSelection(s Selection) Selection {
	return Selection{
		Targets:         slices.Clone(s.Targets),
		ConnectionTypes: slices.Clone(s.ConnectionTypes),
		ConnectionIDs:   slices.Clone(s.ConnectionIDs),
	}
}
