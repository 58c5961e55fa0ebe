package gitlab

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/lucasnoah/notebot/internal/event"
)

// Client talks to the GitLab REST API.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	logger  *slog.Logger
}

// NewClient creates a GitLab client. baseURL may be a bare instance URL
// or a deeper URL copied from a browser; anything from /api/ or /- on is
// stripped. An empty token degrades PostNote to a logged no-op.
func NewClient(baseURL, token string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: normalizeBaseURL(baseURL),
		token:   token,
		http:    &http.Client{Timeout: 15 * time.Second},
		logger:  logger,
	}
}

// SetHTTPClient overrides the underlying HTTP client (for testing).
func (c *Client) SetHTTPClient(h *http.Client) {
	c.http = h
}

// normalizeBaseURL trims trailing slashes and any /api/ or /- path
// segment pasted in from an API or web URL.
func normalizeBaseURL(u string) string {
	u = strings.TrimRight(u, "/")
	if i := strings.Index(u, "/api/"); i >= 0 {
		u = u[:i]
	} else if i := strings.Index(u, "/-"); i >= 0 {
		u = u[:i]
	}
	return u
}

// Note is a comment on an issue or merge request.
type Note struct {
	ID        int    `json:"id"`
	Body      string `json:"body"`
	Author    Author `json:"author"`
	CreatedAt string `json:"created_at"`
}

// Author identifies who wrote a note.
type Author struct {
	Name string `json:"name"`
}

// Issue is the subset of a GitLab issue the pipeline reads.
type Issue struct {
	IID         int    `json:"iid"`
	Title       string `json:"title"`
	Description string `json:"description"`
	State       string `json:"state"`
}

// PostNote posts a comment to an issue or merge request thread. It is
// safe to call with a missing token or an unsupported thread type: both
// log a warning and return a nil note instead of an error.
func (c *Client) PostNote(projectID int, noteableType string, iid int, body string) (*Note, error) {
	if c.token == "" {
		c.logger.Warn("gitlab token not configured, cannot post note")
		return nil, nil
	}

	var url string
	switch noteableType {
	case event.NoteableMergeRequest:
		url = fmt.Sprintf("%s/api/v4/projects/%d/merge_requests/%d/notes", c.baseURL, projectID, iid)
	case event.NoteableIssue:
		url = fmt.Sprintf("%s/api/v4/projects/%d/issues/%d/notes", c.baseURL, projectID, iid)
	default:
		c.logger.Warn("unsupported noteable type", slog.String("noteable_type", noteableType))
		return nil, nil
	}

	payload, err := json.Marshal(map[string]string{"body": body})
	if err != nil {
		return nil, fmt.Errorf("marshal note body: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build note request: %w", err)
	}
	req.Header.Set("PRIVATE-TOKEN", c.token)
	req.Header.Set("Content-Type", "application/json")

	var note Note
	if err := c.do(req, &note); err != nil {
		return nil, fmt.Errorf("post note to %s %d: %w", noteableType, iid, err)
	}

	c.logger.Info("posted note",
		slog.String("noteable_type", noteableType),
		slog.Int("iid", iid),
		slog.Int("note_id", note.ID))
	return &note, nil
}

// GetIssue fetches a single issue.
func (c *Client) GetIssue(projectID, iid int) (*Issue, error) {
	url := fmt.Sprintf("%s/api/v4/projects/%d/issues/%d", c.baseURL, projectID, iid)
	req, err := c.authedGet(url)
	if err != nil {
		return nil, err
	}
	var issue Issue
	if err := c.do(req, &issue); err != nil {
		return nil, fmt.Errorf("get issue %d: %w", iid, err)
	}
	return &issue, nil
}

// ListIssueNotes fetches all notes on an issue, ordered oldest first.
func (c *Client) ListIssueNotes(projectID, iid int) ([]Note, error) {
	url := fmt.Sprintf("%s/api/v4/projects/%d/issues/%d/notes", c.baseURL, projectID, iid)
	req, err := c.authedGet(url)
	if err != nil {
		return nil, err
	}
	var notes []Note
	if err := c.do(req, &notes); err != nil {
		return nil, fmt.Errorf("list notes for issue %d: %w", iid, err)
	}
	sort.SliceStable(notes, func(i, j int) bool {
		return notes[i].CreatedAt < notes[j].CreatedAt
	})
	return notes, nil
}

func (c *Client) authedGet(url string) (*http.Request, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("PRIVATE-TOKEN", c.token)
	return req, nil
}

// do executes a request and decodes the JSON response into out.
func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("gitlab API %s: %s", resp.Status, strings.TrimSpace(string(data)))
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
