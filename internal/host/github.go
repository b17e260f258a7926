package host

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/forkmate/forkmate/internal/model"
)

const userAgent = "forkmate/0.1.0"

// GitHub talks to the GitHub REST API. It works against github.com and
// GitHub Enterprise installations alike via the configured base URL.
type GitHub struct {
	httpClient *http.Client
	baseURL    string
	token      string
	username   string
}

// NewGitHub returns a GitHub provider against apiURL.
func NewGitHub(apiURL, token, username string) *GitHub {
	return &GitHub{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    strings.TrimRight(apiURL, "/"),
		token:      token,
		username:   username,
	}
}

// Kind implements Provider.
func (g *GitHub) Kind() model.Kind { return model.KindGitHub }

func (g *GitHub) url(path string) string {
	return g.baseURL + path
}

// get issues an authenticated GET. The caller owns the response body.
func (g *GitHub) get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &APIError{Message: err.Error()}
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	req.Header.Set("Authorization", "Bearer "+g.token)
	req.Header.Set("User-Agent", userAgent)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, &APIError{Message: err.Error()}
	}
	return resp, nil
}

// classify turns a non-success response into an error, consuming the
// body. 403 and 429 count as rate limiting.
func classify(resp *http.Response) error {
	if resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusTooManyRequests {
		return &RateLimitError{Host: "github.com", RetryAfter: 60 * time.Second}
	}
	body, _ := io.ReadAll(resp.Body)
	return &APIError{Status: resp.StatusCode, Message: string(body)}
}

// getJSON issues a GET and decodes a success response into v.
func (g *GitHub) getJSON(ctx context.Context, url string, v any) error {
	resp, err := g.get(ctx, url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return classify(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return &APIError{Message: fmt.Sprintf("JSON parse error: %v", err)}
	}
	return nil
}

// paginatedGet fetches every page of path until a short page signals
// the end.
func paginatedGet[T any](ctx context.Context, g *GitHub, path string, perPage int) ([]T, error) {
	var all []T
	for page := 1; ; page++ {
		url := fmt.Sprintf("%s?per_page=%d&page=%d", g.url(path), perPage, page)
		var items []T
		if err := g.getJSON(ctx, url, &items); err != nil {
			return nil, err
		}
		all = append(all, items...)
		if len(items) < perPage {
			break
		}
	}
	return all, nil
}

type ghOwner struct {
	Login string `json:"login"`
}

type ghRepo struct {
	FullName      string  `json:"full_name"`
	Name          string  `json:"name"`
	Owner         ghOwner `json:"owner"`
	CloneURL      string  `json:"clone_url"`
	SSHURL        string  `json:"ssh_url"`
	DefaultBranch string  `json:"default_branch"`
	Fork          bool    `json:"fork"`
	Parent        *ghRepo `json:"parent"`
	Description   string  `json:"description"`
	Private       bool    `json:"private"`
	Archived      bool    `json:"archived"`
	UpdatedAt     string  `json:"updated_at"`
}

func (r *ghRepo) remoteRepo() RemoteRepo {
	rr := RemoteRepo{
		FullName:      r.FullName,
		Owner:         r.Owner.Login,
		Name:          r.Name,
		CloneURL:      r.CloneURL,
		SSHURL:        r.SSHURL,
		DefaultBranch: r.DefaultBranch,
		IsFork:        r.Fork,
		Description:   r.Description,
		IsPrivate:     r.Private,
		IsArchived:    r.Archived,
	}
	if rr.DefaultBranch == "" {
		rr.DefaultBranch = "main"
	}
	if r.Parent != nil {
		rr.UpstreamFullName = r.Parent.FullName
		rr.UpstreamCloneURL = r.Parent.CloneURL
	}
	if t, err := time.Parse(time.RFC3339, r.UpdatedAt); err == nil {
		rr.UpdatedAt = &t
	}
	return rr
}

type ghBranch struct {
	Name   string `json:"name"`
	Commit struct {
		SHA string `json:"sha"`
	} `json:"commit"`
}

// ValidateCredentials implements Provider.
func (g *GitHub) ValidateCredentials(ctx context.Context) (bool, error) {
	resp, err := g.get(ctx, g.url("/user"))
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	return resp.StatusCode >= 200 && resp.StatusCode < 300, nil
}

// ListRepos implements Provider.
func (g *GitHub) ListRepos(ctx context.Context) ([]RemoteRepo, error) {
	ghRepos, err := paginatedGet[ghRepo](ctx, g, "/user/repos", 100)
	if err != nil {
		return nil, err
	}
	repos := make([]RemoteRepo, 0, len(ghRepos))
	for i := range ghRepos {
		repos = append(repos, ghRepos[i].remoteRepo())
	}
	return repos, nil
}

// GetRepo implements Provider.
func (g *GitHub) GetRepo(ctx context.Context, owner, name string) (*RemoteRepo, error) {
	resp, err := g.get(ctx, g.url(fmt.Sprintf("/repos/%s/%s", owner, name)))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, classify(resp)
	}

	var gr ghRepo
	if err := json.NewDecoder(resp.Body).Decode(&gr); err != nil {
		return nil, &APIError{Message: fmt.Sprintf("JSON parse error: %v", err)}
	}
	rr := gr.remoteRepo()
	return &rr, nil
}

// ListBranches implements Provider.
func (g *GitHub) ListBranches(ctx context.Context, owner, name string) ([]RemoteBranch, error) {
	ghBranches, err := paginatedGet[ghBranch](ctx, g, fmt.Sprintf("/repos/%s/%s/branches", owner, name), 100)
	if err != nil {
		return nil, err
	}
	branches := make([]RemoteBranch, 0, len(ghBranches))
	for _, b := range ghBranches {
		branches = append(branches, RemoteBranch{Name: b.Name, SHA: b.Commit.SHA})
	}
	return branches, nil
}

// ForkSyncStatus implements Provider. GitHub has no direct fork sync
// endpoint, so the default branch is compared against its upstream
// counterpart via the compare API.
func (g *GitHub) ForkSyncStatus(ctx context.Context, owner, name string) ([]ForkSyncStatus, error) {
	repo, err := g.GetRepo(ctx, owner, name)
	if err != nil {
		return nil, err
	}
	if repo == nil {
		return nil, &NotFoundError{Name: owner + "/" + name}
	}
	if !repo.IsFork || repo.UpstreamFullName == "" {
		return nil, nil
	}

	branch := repo.DefaultBranch
	url := g.url(fmt.Sprintf("/repos/%s/%s/compare/%s:%s...%s",
		owner, name, repo.UpstreamFullName, branch, branch))
	resp, err := g.get(ctx, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Unrelated histories and renamed upstream branches make the
		// compare endpoint fail; report zero counts instead.
		return []ForkSyncStatus{{Branch: branch}}, nil
	}

	var compare struct {
		BehindBy int `json:"behind_by"`
		AheadBy  int `json:"ahead_by"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&compare); err != nil {
		return nil, &APIError{Message: fmt.Sprintf("JSON parse error: %v", err)}
	}
	return []ForkSyncStatus{{Branch: branch, BehindBy: compare.BehindBy, AheadBy: compare.AheadBy}}, nil
}

// RateLimitStatus implements Provider.
func (g *GitHub) RateLimitStatus(ctx context.Context) (RateLimitInfo, error) {
	var rl struct {
		Rate struct {
			Limit     int   `json:"limit"`
			Remaining int   `json:"remaining"`
			Reset     int64 `json:"reset"`
		} `json:"rate"`
	}
	if err := g.getJSON(ctx, g.url("/rate_limit"), &rl); err != nil {
		return RateLimitInfo{}, err
	}
	return RateLimitInfo{
		Limit:     rl.Rate.Limit,
		Remaining: rl.Rate.Remaining,
		ResetAt:   time.Unix(rl.Rate.Reset, 0).UTC(),
	}, nil
}
