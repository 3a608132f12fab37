package jira

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"jiralog/duration"
)

const (
	// MaxIssueResults caps ListIssues.
	MaxIssueResults = 50

	// StartedLayout is the wire format of a work log start time.
	StartedLayout = "2006-01-02T15:04:05.000-0700"

	// minimumWireTimeSpent replaces zero-literals on the wire.
	minimumWireTimeSpent = "1m"

	permissionWorkOnIssues   = "WORK_ON_ISSUES"
	permissionBrowseProjects = "BROWSE_PROJECTS"
)

// Client defines the Jira operations the tracker needs.
type Client interface {
	ValidateCredentials(ctx context.Context) ValidationResult
	ListProjects(ctx context.Context) ([]Project, error)
	ListIssues(ctx context.Context, projectKey string) ([]Issue, error)
	CreateIssue(ctx context.Context, projectKey, summary, issueType string) (CreatedIssue, error)
	CreateIssueWithPayload(ctx context.Context, payload map[string]any) (CreatedIssue, error)
	LogWork(ctx context.Context, req WorkLogRequest) (CreatedWorklog, error)
}

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Credentials identify one Jira account. All fields are required.
type Credentials struct {
	BaseURL  string
	Username string
	APIToken string
}

// Complete reports whether every credential field is set.
func (c Credentials) Complete() bool {
	return strings.TrimSpace(c.BaseURL) != "" &&
		strings.TrimSpace(c.Username) != "" &&
		strings.TrimSpace(c.APIToken) != ""
}

type ClientConfig struct {
	Credentials
	// APIVersion selects the REST API generation ("2" or "3"). Defaults to "2".
	APIVersion string
	// DisableXSRFBypass stops sending "X-Atlassian-Token: no-check" on writes.
	DisableXSRFBypass bool
	UserAgent         string
	HTTPClient        httpDoer
	// Logger receives request diagnostics. Nil disables logging.
	Logger *zerolog.Logger
}

// HTTPClient talks to one Jira site with fixed credentials. It holds no
// mutable state and is safe for concurrent use.
type HTTPClient struct {
	baseURL    string
	username   string
	apiToken   string
	apiVersion string
	xsrfBypass bool
	userAgent  string
	httpClient httpDoer
	log        zerolog.Logger
}

func NewClient(cfg ClientConfig) (*HTTPClient, error) {
	if !cfg.Credentials.Complete() {
		return nil, ErrUninitialized
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	parsedBase, err := url.Parse(baseURL)
	if err != nil || parsedBase.Scheme == "" || parsedBase.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q", cfg.BaseURL)
	}

	apiVersion := strings.TrimSpace(cfg.APIVersion)
	switch apiVersion {
	case "":
		apiVersion = "2"
	case "2", "3":
	default:
		return nil, fmt.Errorf("unsupported API version %q (supported: 2, 3)", cfg.APIVersion)
	}

	doer := cfg.HTTPClient
	if doer == nil {
		doer = &http.Client{}
	}

	logger := zerolog.Nop()
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}

	return &HTTPClient{
		baseURL:    parsedBase.Scheme + "://" + parsedBase.Host + strings.TrimRight(parsedBase.Path, "/"),
		username:   strings.TrimSpace(cfg.Username),
		apiToken:   strings.TrimSpace(cfg.APIToken),
		apiVersion: apiVersion,
		xsrfBypass: !cfg.DisableXSRFBypass,
		userAgent:  strings.TrimSpace(cfg.UserAgent),
		httpClient: doer,
		log:        logger,
	}, nil
}

// APIVersion returns the REST API generation in use.
func (c *HTTPClient) APIVersion() string {
	return c.apiVersion
}

type User struct {
	AccountID    string `json:"accountId,omitempty"`
	Name         string `json:"name,omitempty"`
	Key          string `json:"key,omitempty"`
	EmailAddress string `json:"emailAddress,omitempty"`
	DisplayName  string `json:"displayName"`
	Active       bool   `json:"active"`
	TimeZone     string `json:"timeZone,omitempty"`
}

// Permissions is advisory. A nil CanLogWork means the lookup failed.
type Permissions struct {
	CanLogWork *bool
	Granted    map[string]bool
}

type ValidationResult struct {
	Valid       bool
	User        *User
	Permissions *Permissions
	Error       string
}

type Project struct {
	ID             string `json:"id"`
	Key            string `json:"key"`
	Name           string `json:"name"`
	ProjectTypeKey string `json:"projectTypeKey,omitempty"`
}

type Issue struct {
	ID      string
	Key     string
	Summary string
	Status  string
}

type searchResponse struct {
	StartAt    int           `json:"startAt"`
	MaxResults int           `json:"maxResults"`
	Total      int           `json:"total"`
	Issues     []searchIssue `json:"issues"`
}

type searchIssue struct {
	ID     string `json:"id"`
	Key    string `json:"key"`
	Fields struct {
		Summary string `json:"summary"`
		Status  struct {
			Name string `json:"name"`
		} `json:"status"`
	} `json:"fields"`
}

type permissionsResponse struct {
	Permissions map[string]struct {
		Key            string `json:"key"`
		HavePermission bool   `json:"havePermission"`
	} `json:"permissions"`
}

type CreatedIssue struct {
	ID   string `json:"id"`
	Key  string `json:"key"`
	Self string `json:"self"`
}

type WorkLogRequest struct {
	IssueKey  string
	TimeSpent string
	Comment   string
	Started   *time.Time
}

type CreatedWorklog struct {
	ID               string `json:"id"`
	IssueID          string `json:"issueId"`
	Self             string `json:"self"`
	TimeSpent        string `json:"timeSpent"`
	TimeSpentSeconds int    `json:"timeSpentSeconds"`
	Started          string `json:"started"`
}

type worklogPayload struct {
	TimeSpent string `json:"timeSpent"`
	Comment   any    `json:"comment,omitempty"`
	Started   string `json:"started,omitempty"`
}

// ValidateCredentials never returns an error: authentication failures are
// reported through Valid/Error, and a failed permission lookup leaves
// Permissions.CanLogWork nil.
func (c *HTTPClient) ValidateCredentials(ctx context.Context) ValidationResult {
	var user User
	if err := c.doJSON(ctx, OpValidateCredentials, http.MethodGet, c.apiPath("/myself"), nil, nil, &user); err != nil {
		c.log.Warn().Err(err).Msg("jira credential validation failed")
		return ValidationResult{Valid: false, Error: err.Error()}
	}

	query := url.Values{}
	query.Set("permissions", permissionWorkOnIssues+","+permissionBrowseProjects)
	var perms permissionsResponse
	if err := c.doJSON(ctx, OpCheckPermissions, http.MethodGet, c.apiPath("/mypermissions"), query, nil, &perms); err != nil {
		c.log.Warn().Err(err).Msg("could not check jira permissions")
		return ValidationResult{Valid: true, User: &user, Permissions: &Permissions{}}
	}

	granted := make(map[string]bool, len(perms.Permissions))
	for key, perm := range perms.Permissions {
		granted[key] = perm.HavePermission
	}
	canLogWork := granted[permissionWorkOnIssues]
	if !canLogWork {
		c.log.Warn().Str("user", user.DisplayName).Msg("user lacks WORK_ON_ISSUES permission")
	}

	return ValidationResult{
		Valid:       true,
		User:        &user,
		Permissions: &Permissions{CanLogWork: &canLogWork, Granted: granted},
	}
}

func (c *HTTPClient) ListProjects(ctx context.Context) ([]Project, error) {
	var out []Project
	if err := c.doJSON(ctx, OpListProjects, http.MethodGet, c.apiPath("/project"), nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListIssues returns up to MaxIssueResults issues of the project, most
// recently updated first.
func (c *HTTPClient) ListIssues(ctx context.Context, projectKey string) ([]Issue, error) {
	projectKey = strings.TrimSpace(projectKey)
	if projectKey == "" {
		return nil, errors.New("project key is required")
	}

	query := url.Values{}
	query.Set("jql", fmt.Sprintf("project = %q ORDER BY updated DESC", projectKey))
	query.Set("maxResults", fmt.Sprint(MaxIssueResults))
	query.Set("fields", "summary,status")

	var out searchResponse
	if err := c.doJSON(ctx, OpListIssues, http.MethodGet, c.apiPath("/search"), query, nil, &out); err != nil {
		return nil, err
	}

	issues := make([]Issue, 0, len(out.Issues))
	for _, item := range out.Issues {
		issues = append(issues, Issue{
			ID:      item.ID,
			Key:     item.Key,
			Summary: item.Fields.Summary,
			Status:  item.Fields.Status.Name,
		})
	}
	if len(issues) > MaxIssueResults {
		issues = issues[:MaxIssueResults]
	}
	return issues, nil
}

func (c *HTTPClient) CreateIssue(ctx context.Context, projectKey, summary, issueType string) (CreatedIssue, error) {
	payload := map[string]any{
		"fields": map[string]any{
			"project":   map[string]any{"key": strings.TrimSpace(projectKey)},
			"summary":   summary,
			"issuetype": map[string]any{"name": ParseIssueType(issueType).String()},
		},
	}
	return c.submitIssue(ctx, payload)
}

// CreateIssueWithPayload submits a caller-built payload. When
// fields.issuetype is present its name is normalized like CreateIssue does.
// The caller's maps are not modified.
func (c *HTTPClient) CreateIssueWithPayload(ctx context.Context, payload map[string]any) (CreatedIssue, error) {
	if payload == nil {
		return CreatedIssue{}, errors.New("issue payload is required")
	}
	return c.submitIssue(ctx, normalizeIssuePayload(payload))
}

func normalizeIssuePayload(payload map[string]any) map[string]any {
	fields, ok := payload["fields"].(map[string]any)
	if !ok {
		return payload
	}
	issueType, ok := fields["issuetype"].(map[string]any)
	if !ok {
		return payload
	}

	name, _ := issueType["name"].(string)
	normalizedType := maps.Clone(issueType)
	normalizedType["name"] = ParseIssueType(name).String()

	normalizedFields := maps.Clone(fields)
	normalizedFields["issuetype"] = normalizedType

	out := maps.Clone(payload)
	out["fields"] = normalizedFields
	return out
}

func (c *HTTPClient) submitIssue(ctx context.Context, payload map[string]any) (CreatedIssue, error) {
	var out CreatedIssue
	if err := c.doJSON(ctx, OpCreateIssue, http.MethodPost, c.apiPath("/issue"), nil, payload, &out); err != nil {
		return CreatedIssue{}, err
	}
	c.log.Info().Str("issue", out.Key).Msg("jira issue created")
	return out, nil
}

// LogWork adds a work-log entry. TimeSpent must be a valid duration string;
// the zero-literals "0m", "0h" and "0" are sent as "1m".
func (c *HTTPClient) LogWork(ctx context.Context, req WorkLogRequest) (CreatedWorklog, error) {
	issueKey := strings.TrimSpace(req.IssueKey)
	if issueKey == "" {
		return CreatedWorklog{}, errors.New("issue key is required")
	}

	timeSpent := strings.TrimSpace(req.TimeSpent)
	if duration.IsZeroLiteral(timeSpent) {
		timeSpent = minimumWireTimeSpent
	} else if !duration.Validate(timeSpent) {
		return CreatedWorklog{}, fmt.Errorf("log work on %s: %w: %q", issueKey, duration.ErrMalformedDuration, req.TimeSpent)
	} else if _, err := duration.Parse(timeSpent); err != nil {
		return CreatedWorklog{}, fmt.Errorf("log work on %s: %w", issueKey, err)
	}

	payload := worklogPayload{
		TimeSpent: timeSpent,
		Comment:   c.worklogComment(req.Comment),
	}
	if req.Started != nil {
		payload.Started = FormatStarted(*req.Started)
	}

	path := c.apiPath("/issue/" + url.PathEscape(issueKey) + "/worklog")
	var out CreatedWorklog
	if err := c.doJSON(ctx, OpLogWork, http.MethodPost, path, nil, payload, &out); err != nil {
		return CreatedWorklog{}, err
	}
	c.log.Info().Str("issue", issueKey).Str("worklog", out.ID).Str("time_spent", timeSpent).Msg("work logged")
	return out, nil
}

// worklogComment renders the comment for the configured API version. API v3
// expects an Atlassian Document Format body and rejects an empty one.
func (c *HTTPClient) worklogComment(comment string) any {
	if c.apiVersion != "3" {
		return comment
	}
	if strings.TrimSpace(comment) == "" {
		return nil
	}
	return map[string]any{
		"type":    "doc",
		"version": 1,
		"content": []any{
			map[string]any{
				"type": "paragraph",
				"content": []any{
					map[string]any{"type": "text", "text": comment},
				},
			},
		},
	}
}

// FormatStarted renders a work-log start time in the format Jira expects.
func FormatStarted(value time.Time) string {
	return value.Format(StartedLayout)
}

func (c *HTTPClient) apiPath(resource string) string {
	return "/rest/api/" + c.apiVersion + resource
}

func (c *HTTPClient) doJSON(ctx context.Context, op Operation, method, endpointPath string, query url.Values, body any, out any) error {
	var bodyReader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(payload)
	}

	requestURL := c.baseURL + endpointPath
	if len(query) > 0 {
		requestURL += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, requestURL, bodyReader)
	if err != nil {
		return fmt.Errorf("create request %s %s: %w", method, endpointPath, err)
	}

	req.SetBasicAuth(c.username, c.apiToken)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method != http.MethodGet && c.xsrfBypass {
		req.Header.Set("X-Atlassian-Token", "no-check")
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Debug().Err(err).Str("method", method).Str("path", endpointPath).Msg("jira request failed")
		return &Error{Kind: KindTransportFailure, Op: op, Err: err}
	}
	defer resp.Body.Close()

	c.log.Debug().Str("method", method).Str("path", endpointPath).Int("status", resp.StatusCode).Msg("jira request")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		responseBody, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
		return &Error{
			Kind:   classifyStatus(op, resp.StatusCode),
			Op:     op,
			Status: resp.StatusCode,
			Detail: errorDetail(responseBody),
			Err:    fmt.Errorf("%s %s returned status %d", method, endpointPath, resp.StatusCode),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return &Error{
			Kind:   KindRemoteError,
			Op:     op,
			Status: resp.StatusCode,
			Detail: "unexpected response body",
			Err:    fmt.Errorf("decode response %s %s: %w", method, endpointPath, err),
		}
	}
	return nil
}
