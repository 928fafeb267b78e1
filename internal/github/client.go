package github

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/Alpha4Coders/DevTrack/internal"
)

type Repo struct {
	Name        string    `json:"name"`
	FullName    string    `json:"fullName"`
	Description string    `json:"description,omitempty"`
	Language    string    `json:"language,omitempty"`
	Stars       int       `json:"stars"`
	Forks       int       `json:"forks"`
	UpdatedAt   time.Time `json:"updatedAt"`
	URL         string    `json:"url"`
	Private     bool      `json:"isPrivate"`
}

type ActivitySummary struct {
	TotalEvents   int      `json:"totalEvents"`
	TodayEvents   int      `json:"todayEvents"`
	PushEvents    int      `json:"pushEvents"`
	PREvents      int      `json:"prEvents"`
	IssueEvents   int      `json:"issueEvents"`
	ReposWorkedOn []string `json:"reposWorkedOn"`
}

// ActivitySource is the boundary the reminder evaluator talks to; failures
// are handled fail-open by the caller.
type ActivitySource interface {
	ActivitySummary(ctx context.Context, username, token string) (*ActivitySummary, error)
	RecentRepos(ctx context.Context, username, token string, limit int) ([]Repo, error)
}

type Client struct {
	baseURL string
	// fallbackToken authenticates requests for users who have not linked a
	// personal token, keeping us out of the unauthenticated rate bucket.
	fallbackToken string
	http          *http.Client
	logger        internal.Logger
}

func NewClient(baseURL, fallbackToken string, logger internal.Logger) *Client {
	return &Client{
		baseURL:       baseURL,
		fallbackToken: fallbackToken,
		http:          &http.Client{Timeout: 10 * time.Second},
		logger:        logger,
	}
}

type apiEvent struct {
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"created_at"`
	Repo      struct {
		Name string `json:"name"`
	} `json:"repo"`
}

type apiRepo struct {
	Name        string    `json:"name"`
	FullName    string    `json:"full_name"`
	Description string    `json:"description"`
	Language    string    `json:"language"`
	Stars       int       `json:"stargazers_count"`
	Forks       int       `json:"forks_count"`
	UpdatedAt   time.Time `json:"updated_at"`
	HTMLURL     string    `json:"html_url"`
	Private     bool      `json:"private"`
}

func (c *Client) get(ctx context.Context, path, token string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	if token == "" {
		token = c.fallbackToken
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("github api returned %d for %s", resp.StatusCode, path)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// ActivitySummary tallies the user's recent public events, bucketing by
// type and counting those on the current local day.
func (c *Client) ActivitySummary(ctx context.Context, username, token string) (*ActivitySummary, error) {
	var events []apiEvent
	path := fmt.Sprintf("/users/%s/events/public?per_page=100", url.PathEscape(username))
	if err := c.get(ctx, path, token, &events); err != nil {
		c.logger.Errorf("github: failed to fetch events for %s: %v", username, err)
		return nil, err
	}

	today := time.Now().Local().Format("2006-01-02")
	summary := &ActivitySummary{TotalEvents: len(events)}
	seen := make(map[string]bool)
	for _, ev := range events {
		if ev.CreatedAt.Local().Format("2006-01-02") == today {
			summary.TodayEvents++
		}
		if !seen[ev.Repo.Name] {
			seen[ev.Repo.Name] = true
			summary.ReposWorkedOn = append(summary.ReposWorkedOn, ev.Repo.Name)
		}
		switch ev.Type {
		case "PushEvent":
			summary.PushEvents++
		case "PullRequestEvent":
			summary.PREvents++
		case "IssuesEvent":
			summary.IssueEvents++
		}
	}
	return summary, nil
}

// RecentRepos lists the user's most recently updated repositories.
func (c *Client) RecentRepos(ctx context.Context, username, token string, limit int) ([]Repo, error) {
	if limit <= 0 {
		limit = 10
	}
	var raw []apiRepo
	path := fmt.Sprintf("/users/%s/repos?sort=updated&per_page=%d", url.PathEscape(username), limit)
	if err := c.get(ctx, path, token, &raw); err != nil {
		c.logger.Errorf("github: failed to fetch repos for %s: %v", username, err)
		return nil, err
	}

	repos := make([]Repo, 0, len(raw))
	for _, r := range raw {
		repos = append(repos, Repo{
			Name:        r.Name,
			FullName:    r.FullName,
			Description: r.Description,
			Language:    r.Language,
			Stars:       r.Stars,
			Forks:       r.Forks,
			UpdatedAt:   r.UpdatedAt,
			URL:         r.HTMLURL,
			Private:     r.Private,
		})
	}
	return repos, nil
}

var _ ActivitySource = (*Client)(nil)
