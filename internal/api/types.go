package api

// Page is the uniform envelope returned by every list endpoint.
type Page[T any] struct {
	Content       []T    `json:"content"`
	Page          int    `json:"page"`
	Size          int    `json:"size"`
	TotalElements int64  `json:"totalElements"`
	TotalPages    int    `json:"totalPages"`
	SortBy        string `json:"sortBy"`
	SortDirection string `json:"sortDirection"`
}

// User is the authenticated user blob kept in the local store.
type User struct {
	ID    string   `json:"id"`
	Email string   `json:"email"`
	Name  string   `json:"name"`
	Roles []string `json:"roles,omitempty"`
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the bearer token for subsequent requests.
type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expiresAt,omitempty"`
	User      User   `json:"user"`
}

// AuthStatus is the result of GET /auth/status.
type AuthStatus struct {
	Authenticated bool  `json:"authenticated"`
	User          *User `json:"user,omitempty"`
}

// Role is a primary or secondary teammate role.
type Role struct {
	Code        string `json:"code"`
	DisplayName string `json:"displayName"`
	Description string `json:"description,omitempty"`
}

// LeaveType is a kind of teammate leave.
type LeaveType struct {
	Code  string `json:"code"`
	Name  string `json:"name"`
	Paid  bool   `json:"paid"`
	Color string `json:"color,omitempty"`
}

// Project is a row of GET /projects.
type Project struct {
	ID     string `json:"id"`
	Key    string `json:"key"`
	Name   string `json:"name"`
	Status string `json:"status"`
}

// Teammate is a row of GET /teammates after role normalization.
type Teammate struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Email          string   `json:"email"`
	TeamID         string   `json:"teamId,omitempty"`
	PrimaryRole    string   `json:"primaryRole"`
	SecondaryRoles []string `json:"secondaryRoles"`

	// Role and SecondaryRole are the legacy single-value fields some
	// backend versions still return instead of the fields above.
	Role          string `json:"role,omitempty"`
	SecondaryRole string `json:"secondaryRole,omitempty"`
}

// Team is a row of GET /teams.
type Team struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	MemberCount int    `json:"memberCount"`
}

// Sprint is a row of GET /sprints.
type Sprint struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	State     string `json:"state"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

// Release is a row of GET /releases.
type Release struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Status      string `json:"status"`
	ReleaseDate string `json:"releaseDate"`
}

// Connector is a configured external integration, normalized from the
// varying row shapes the backend returns (see NormalizeConnector).
type Connector struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Type       string `json:"type"`
	Status     string `json:"status"`
	LastSyncAt string `json:"lastSyncAt,omitempty"`
}

// CatalogEntry describes a connector type that can be configured.
type CatalogEntry struct {
	Type        string `json:"type"`
	DisplayName string `json:"displayName"`
	Description string `json:"description"`
	AuthType    string `json:"authType"`
}

// ConnectorHealth is the result of GET /admin/connectors/{id}/health.
type ConnectorHealth struct {
	ConnectorID   string `json:"connectorId"`
	Status        string `json:"status"`
	Healthy       bool   `json:"healthy"`
	Message       string `json:"message,omitempty"`
	LatencyMs     int64  `json:"latencyMs"`
	LastCheckedAt string `json:"lastCheckedAt,omitempty"`
}

// VerifyResult is the result of POST /admin/connectors/{id}/verify.
type VerifyResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ReauthorizeResult carries the URL the user must visit to re-authorize.
type ReauthorizeResult struct {
	AuthorizationURL string `json:"authorizationUrl"`
}

// ConnectorLog is a row of GET /admin/connectors/{id}/logs.
type ConnectorLog struct {
	ID        string `json:"id"`
	JobID     string `json:"jobId,omitempty"`
	Level     string `json:"level"`
	Message   string `json:"message"`
	CreatedAt string `json:"createdAt"`
}

// Job status values.
const (
	JobStatusDraft    = "DRAFT"
	JobStatusActive   = "ACTIVE"
	JobStatusInactive = "INACTIVE"
)

// Job is a unit of sync work under a connector.
type Job struct {
	ID          string `json:"id"`
	ConnectorID string `json:"connectorId"`
	Name        string `json:"name"`
	Status      string `json:"status"`
	Schedule    string `json:"schedule,omitempty"`
	LastRunAt   string `json:"lastRunAt,omitempty"`
}

// CreateJobRequest is the body of POST /admin/connectors/{id}/jobs.
type CreateJobRequest struct {
	Name     string `json:"name"`
	Schedule string `json:"schedule,omitempty"`
}

// JobFilters restricts what a job extracts from the source system.
type JobFilters struct {
	Projects   []string `json:"projects"`
	IssueTypes []string `json:"issueTypes"`
	DateFrom   string   `json:"dateFrom,omitempty"`
	DateTo     string   `json:"dateTo,omitempty"`
	JQL        string   `json:"jql,omitempty"`
}

// FilterOption is one selectable value of a filter.
type FilterOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// FilterOptions lists selectable filter values for a job.
type FilterOptions struct {
	Projects   []FilterOption `json:"projects"`
	IssueTypes []FilterOption `json:"issueTypes"`
}

// Discovery status values.
const (
	DiscoveryNotStarted = "NOT_STARTED"
	DiscoveryRunning    = "RUNNING"
	DiscoveryCompleted  = "COMPLETED"
	DiscoveryFailed     = "FAILED"
)

// DiscoveryStatus is the state of field discovery for a job.
type DiscoveryStatus struct {
	Status           string `json:"status"`
	Progress         int    `json:"progress"`
	FieldsDiscovered int    `json:"fieldsDiscovered"`
	StartedAt        string `json:"startedAt,omitempty"`
	CompletedAt      string `json:"completedAt,omitempty"`
	Error            string `json:"error,omitempty"`
}

// DiscoveredField is a source-system field found by discovery.
type DiscoveredField struct {
	SourceField  string   `json:"sourceField"`
	Name         string   `json:"name"`
	Type         string   `json:"type"`
	Custom       bool     `json:"custom"`
	SampleValues []string `json:"sampleValues,omitempty"`
}

// DiscoveryResults lists the fields found by a completed discovery.
type DiscoveryResults struct {
	Fields       []DiscoveredField `json:"fields"`
	DiscoveredAt string            `json:"discoveredAt,omitempty"`
}

// FieldMapping associates a source field with a Zenem domain field.
type FieldMapping struct {
	ZenemField  string `json:"zenemField"`
	SourceField string `json:"sourceField"`
	Transform   string `json:"transform,omitempty"`
}

// MappingSuggestion is a backend-proposed mapping.
type MappingSuggestion struct {
	ZenemField  string  `json:"zenemField"`
	SourceField string  `json:"sourceField"`
	Confidence  float64 `json:"confidence"`
	Reason      string  `json:"reason,omitempty"`
}

// RequiredField is a Zenem domain field a job may or must map.
type RequiredField struct {
	ZenemField string `json:"zenemField"`
	Label      string `json:"label"`
	Type       string `json:"type"`
	Mandatory  bool   `json:"mandatory"`
}

// SaveMappingsRequest is the body of PUT .../mappings.
type SaveMappingsRequest struct {
	Mappings []FieldMapping `json:"mappings"`
}

// JobTestResult summarizes a sample extraction.
type JobTestResult struct {
	Success       bool             `json:"success"`
	RecordsFound  int              `json:"recordsFound"`
	SampleRecords []map[string]any `json:"sampleRecords,omitempty"`
	Errors        []string         `json:"errors,omitempty"`
	Warnings      []string         `json:"warnings,omitempty"`
	DurationMs    int64            `json:"durationMs"`
}

// RefreshTarget names a category of backend data that can be re-synced.
type RefreshTarget string

// Well-known refresh targets.
const (
	TargetEpics     RefreshTarget = "EPICS"
	TargetTeammates RefreshTarget = "TEAMMATES"
	TargetCalendar  RefreshTarget = "CALENDAR"
	TargetSprints   RefreshTarget = "SPRINTS"
	TargetReleases  RefreshTarget = "RELEASES"
)

// RefreshSelection is what to refresh and from where.
type RefreshSelection struct {
	Targets         []RefreshTarget `json:"targets"`
	ConnectionTypes []string        `json:"connectionTypes"`
	ConnectionIDs   []string        `json:"connectionIds"`
}

// TargetOption is a selectable refresh target.
type TargetOption struct {
	Target      RefreshTarget `json:"target"`
	Label       string        `json:"label"`
	Description string        `json:"description,omitempty"`
	Category    string        `json:"category,omitempty"`
	Available   bool          `json:"available"`
}

// RefreshConnection is a connection a refresh can pull from.
type RefreshConnection = Connector

// RefreshDependency states that refreshing Target also needs DependsOn.
type RefreshDependency struct {
	Target    RefreshTarget   `json:"target"`
	DependsOn []RefreshTarget `json:"dependsOn"`
}

// ConnectionHealth is the health of one refresh connection.
type ConnectionHealth struct {
	ConnectionID string `json:"connectionId"`
	Status       string `json:"status"`
	Healthy      bool   `json:"healthy"`
	Message      string `json:"message,omitempty"`
}

// RefreshSuggestions are targets suggested for a UI context.
type RefreshSuggestions struct {
	Context          string          `json:"context"`
	SuggestedTargets []RefreshTarget `json:"suggestedTargets"`
	Reason           string          `json:"reason,omitempty"`
}

// RefreshEstimate is the backend's projection for a selection.
type RefreshEstimate struct {
	EstimatedDurationSeconds int      `json:"estimatedDurationSeconds"`
	EstimatedRecords         int      `json:"estimatedRecords"`
	Warnings                 []string `json:"warnings"`
}

// RefreshValidation is the result of validating a selection.
type RefreshValidation struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// StartRefreshResponse identifies a newly started orchestration.
type StartRefreshResponse struct {
	OrchestrationID string        `json:"orchestrationId"`
	Status          RefreshStatus `json:"status"`
}

// RefreshStatus is the lifecycle state of an orchestration or target.
type RefreshStatus string

// Refresh status values. IN_PROGRESS is accepted as a synonym of RUNNING.
const (
	StatusPending    RefreshStatus = "PENDING"
	StatusRunning    RefreshStatus = "RUNNING"
	StatusInProgress RefreshStatus = "IN_PROGRESS"
	StatusCompleted  RefreshStatus = "COMPLETED"
	StatusFailed     RefreshStatus = "FAILED"
	StatusCancelled  RefreshStatus = "CANCELLED"
)

// IsTerminal reports whether no further progress will be made.
func (s RefreshStatus) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// TargetProgress is the progress of one target within an orchestration.
type TargetProgress struct {
	Target           RefreshTarget `json:"target"`
	Status           RefreshStatus `json:"status"`
	Progress         float64       `json:"progress"`
	RecordsProcessed int           `json:"recordsProcessed"`
	Message          string        `json:"message,omitempty"`
}

// RefreshStatusResponse is a snapshot of one orchestration.
type RefreshStatusResponse struct {
	OrchestrationID string           `json:"orchestrationId"`
	Status          RefreshStatus    `json:"status"`
	OverallProgress float64          `json:"overallProgress"`
	Targets         []TargetProgress `json:"targets"`
	Errors          []string         `json:"errors"`
	Warnings        []string         `json:"warnings"`
	StartedAt       string           `json:"startedAt,omitempty"`
	CompletedAt     string           `json:"completedAt,omitempty"`
}
