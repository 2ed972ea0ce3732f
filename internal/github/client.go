package github

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// retryInitialInterval is the first backoff delay after a rate-limited response.
var retryInitialInterval = RetryDelay

// NewClient creates a new GitHub client.
func NewClient(token, owner, repo string) *Client {
	return &Client{
		Token:   token,
		Owner:   owner,
		Repo:    repo,
		BaseURL: DefaultAPIEndpoint,
		HTTPClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
}

// WithHTTPClient returns a new client with a custom HTTP client.
func (c *Client) WithHTTPClient(httpClient *http.Client) *Client {
	return &Client{
		Token:      c.Token,
		Owner:      c.Owner,
		Repo:       c.Repo,
		BaseURL:    c.BaseURL,
		HTTPClient: httpClient,
	}
}

// WithBaseURL returns a new client with a custom base URL (for testing or GitHub Enterprise).
func (c *Client) WithBaseURL(baseURL string) *Client {
	return &Client{
		Token:      c.Token,
		Owner:      c.Owner,
		Repo:       c.Repo,
		BaseURL:    baseURL,
		HTTPClient: c.HTTPClient,
	}
}

// repoPath returns the "owner/repo" path segment.
func (c *Client) repoPath() string {
	return c.Owner + "/" + c.Repo
}

// buildURL constructs a full API URL.
func (c *Client) buildURL(path string, params map[string]string) string {
	u := c.BaseURL + path

	if len(params) > 0 {
		values := url.Values{}
		for k, v := range params {
			values.Set(k, v)
		}
		u += "?" + values.Encode()
	}

	return u
}

// rateLimitError marks a response that may be retried after a delay.
type rateLimitError struct {
	retryAfter time.Duration
}

func (e *rateLimitError) Error() string {
	return "rate limited"
}

// isRateLimited recognizes primary (429, or 403 with no remaining quota) and
// secondary rate limits.
func isRateLimited(resp *http.Response, body []byte) bool {
	if resp.StatusCode == http.StatusTooManyRequests {
		return true
	}
	if resp.StatusCode != http.StatusForbidden {
		return false
	}
	return resp.Header.Get("X-RateLimit-Remaining") == "0" ||
		resp.Header.Get("Retry-After") != "" ||
		bytes.Contains(bytes.ToLower(body), []byte("secondary rate limit"))
}

// retryAfterBackOff prefers the server's Retry-After delay over the
// exponential schedule when one was given.
type retryAfterBackOff struct {
	backoff.BackOff
	next time.Duration
}

func (b *retryAfterBackOff) NextBackOff() time.Duration {
	if b.next > 0 {
		d := b.next
		b.next = 0
		return d
	}
	return b.BackOff.NextBackOff()
}

// doRequest performs an HTTP request with authentication. Rate-limited requests
// are retried with exponential backoff; every other failure is returned
// immediately, HTTP failures as *APIError.
func (c *Client) doRequest(ctx context.Context, method, urlStr string, body interface{}) ([]byte, http.Header, error) {
	var jsonBody []byte
	if body != nil {
		var err error
		jsonBody, err = json.Marshal(body)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
	}

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = retryInitialInterval
	bo := &retryAfterBackOff{BackOff: exp}

	var respBody []byte
	var respHeaders http.Header
	op := func() error {
		var reqBody io.Reader
		if jsonBody != nil {
			reqBody = bytes.NewReader(jsonBody)
		}
		req, err := http.NewRequestWithContext(ctx, method, urlStr, reqBody)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
		}

		req.Header.Set("Authorization", "Bearer "+c.Token)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/vnd.github+json")
		req.Header.Set("X-GitHub-Api-Version", "2022-11-28")

		resp, err := c.HTTPClient.Do(req)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("request failed: %w", err))
		}

		const maxResponseSize = 50 * 1024 * 1024
		data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
		_ = resp.Body.Close()
		if err != nil {
			return backoff.Permanent(fmt.Errorf("failed to read response: %w", err))
		}

		if isRateLimited(resp, data) {
			rl := &rateLimitError{}
			if seconds, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && seconds > 0 {
				rl.retryAfter = time.Duration(seconds) * time.Second
			}
			bo.next = rl.retryAfter
			return rl
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return backoff.Permanent(&APIError{StatusCode: resp.StatusCode, Body: string(data)})
		}

		respBody, respHeaders = data, resp.Header
		return nil
	}

	err := backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(bo, MaxRetries), ctx))
	if err != nil {
		var rl *rateLimitError
		if errors.As(err, &rl) {
			return nil, nil, fmt.Errorf("max retries (%d) exceeded: %w", MaxRetries, err)
		}
		return nil, nil, err
	}
	return respBody, respHeaders, nil
}

// linkNextPattern matches the "next" relation in GitHub Link headers.
var linkNextPattern = regexp.MustCompile(`<([^>]+)>;\s*rel="next"`)

// hasNextPage checks the Link header for a next page URL and returns it.
func hasNextPage(headers http.Header) (string, bool) {
	link := headers.Get("Link")
	if link == "" {
		return "", false
	}
	matches := linkNextPattern.FindStringSubmatch(link)
	if len(matches) < 2 {
		return "", false
	}
	return matches[1], true
}

// getPaged walks a paginated list endpoint, handing each page's body to fn.
func (c *Client) getPaged(ctx context.Context, path string, params map[string]string, fn func([]byte) error) error {
	page := 1
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		p := map[string]string{
			"per_page": strconv.Itoa(MaxPageSize),
			"page":     strconv.Itoa(page),
		}
		for k, v := range params {
			p[k] = v
		}

		respBody, headers, err := c.doRequest(ctx, http.MethodGet, c.buildURL(path, p), nil)
		if err != nil {
			return err
		}
		if err := fn(respBody); err != nil {
			return err
		}

		if _, ok := hasNextPage(headers); !ok {
			return nil
		}
		page++

		if page > MaxPages {
			return fmt.Errorf("pagination limit exceeded: stopped after %d pages", MaxPages)
		}
	}
}

// FetchIssues retrieves issues carrying label. state can be "open", "closed"
// or "all"; an empty label fetches every issue. Pull requests, which GitHub
// returns from the issues endpoint too, are filtered out.
func (c *Client) FetchIssues(ctx context.Context, state, label string) ([]Issue, error) {
	params := map[string]string{"state": "all"}
	if state != "" && state != "all" {
		params["state"] = state
	}
	if label != "" {
		params["labels"] = label
	}

	var allIssues []Issue
	err := c.getPaged(ctx, "/repos/"+c.repoPath()+"/issues", params, func(body []byte) error {
		var issues []Issue
		if err := json.Unmarshal(body, &issues); err != nil {
			return fmt.Errorf("failed to parse issues response: %w", err)
		}
		for i := range issues {
			if issues[i].PullRequest == nil {
				allIssues = append(allIssues, issues[i])
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch issues: %w", err)
	}
	return allIssues, nil
}

// CreateIssue creates a new issue in GitHub.
func (c *Client) CreateIssue(ctx context.Context, in IssueCreate) (*Issue, error) {
	urlStr := c.buildURL("/repos/"+c.repoPath()+"/issues", nil)
	respBody, _, err := c.doRequest(ctx, http.MethodPost, urlStr, in)
	if err != nil {
		return nil, fmt.Errorf("failed to create issue: %w", err)
	}

	var issue Issue
	if err := json.Unmarshal(respBody, &issue); err != nil {
		return nil, fmt.Errorf("failed to parse create response: %w", err)
	}

	return &issue, nil
}

// UpdateIssue updates an existing issue in GitHub.
// GitHub uses PATCH for issue updates.
func (c *Client) UpdateIssue(ctx context.Context, number int, updates map[string]interface{}) (*Issue, error) {
	urlStr := c.buildURL("/repos/"+c.repoPath()+"/issues/"+strconv.Itoa(number), nil)
	respBody, _, err := c.doRequest(ctx, http.MethodPatch, urlStr, updates)
	if err != nil {
		return nil, fmt.Errorf("failed to update issue: %w", err)
	}

	var issue Issue
	if err := json.Unmarshal(respBody, &issue); err != nil {
		return nil, fmt.Errorf("failed to parse update response: %w", err)
	}

	return &issue, nil
}

// CloseIssue sets the issue state to closed.
func (c *Client) CloseIssue(ctx context.Context, number int) error {
	_, err := c.UpdateIssue(ctx, number, map[string]interface{}{"state": "closed"})
	return err
}

// FetchIssueByNumber retrieves a single issue by its number.
func (c *Client) FetchIssueByNumber(ctx context.Context, number int) (*Issue, error) {
	urlStr := c.buildURL("/repos/"+c.repoPath()+"/issues/"+strconv.Itoa(number), nil)
	respBody, _, err := c.doRequest(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch issue #%d: %w", number, err)
	}

	var issue Issue
	if err := json.Unmarshal(respBody, &issue); err != nil {
		return nil, fmt.Errorf("failed to parse issue response: %w", err)
	}

	return &issue, nil
}

// ListMilestones retrieves all milestones, open and closed.
func (c *Client) ListMilestones(ctx context.Context) ([]Milestone, error) {
	var all []Milestone
	err := c.getPaged(ctx, "/repos/"+c.repoPath()+"/milestones", map[string]string{"state": "all"}, func(body []byte) error {
		var page []Milestone
		if err := json.Unmarshal(body, &page); err != nil {
			return fmt.Errorf("failed to parse milestones response: %w", err)
		}
		all = append(all, page...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list milestones: %w", err)
	}
	return all, nil
}

// CreateMilestone creates an open milestone.
func (c *Client) CreateMilestone(ctx context.Context, title, description string) (*Milestone, error) {
	reqBody := map[string]interface{}{
		"title":       title,
		"description": description,
	}
	urlStr := c.buildURL("/repos/"+c.repoPath()+"/milestones", nil)
	respBody, _, err := c.doRequest(ctx, http.MethodPost, urlStr, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create milestone: %w", err)
	}

	var m Milestone
	if err := json.Unmarshal(respBody, &m); err != nil {
		return nil, fmt.Errorf("failed to parse milestone response: %w", err)
	}
	return &m, nil
}

// GetLabel fetches a label by name. Returns nil, nil if it does not exist.
func (c *Client) GetLabel(ctx context.Context, name string) (*Label, error) {
	urlStr := c.buildURL("/repos/"+c.repoPath()+"/labels/"+url.PathEscape(name), nil)
	respBody, _, err := c.doRequest(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.IsNotFound() {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch label %q: %w", name, err)
	}

	var label Label
	if err := json.Unmarshal(respBody, &label); err != nil {
		return nil, fmt.Errorf("failed to parse label response: %w", err)
	}
	return &label, nil
}

// CreateLabel creates a label. A 422 response (label already exists) is not
// an error.
func (c *Client) CreateLabel(ctx context.Context, name, color string) error {
	reqBody := map[string]interface{}{
		"name":  name,
		"color": color,
	}
	urlStr := c.buildURL("/repos/"+c.repoPath()+"/labels", nil)
	_, _, err := c.doRequest(ctx, http.MethodPost, urlStr, reqBody)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnprocessableEntity {
			return nil
		}
		return fmt.Errorf("failed to create label %q: %w", name, err)
	}
	return nil
}
