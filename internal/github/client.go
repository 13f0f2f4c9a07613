// Package github adapts the GitHub REST API to the pipeline's IssueTracker.
package github

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	gh "github.com/google/go-github/v68/github"

	"github.com/ahmednasr/issue-retriever/internal/models"
)

const perPage = 100

// Client is a thin wrapper around go-github exposing just the calls the pipeline needs.
type Client struct {
	gh *gh.Client
}

// NewClient returns a ready-to-use GitHub API client.
// token may be an empty string, but you will be subject to very low rate-limits.
// baseURL overrides the API root (GitHub Enterprise, tests); "" keeps api.github.com.
func NewClient(token, baseURL string, timeout time.Duration) (*Client, error) {
	c := gh.NewClient(&http.Client{Timeout: timeout})
	if token != "" {
		c = c.WithAuthToken(token)
	}
	if baseURL != "" {
		u, err := url.Parse(strings.TrimRight(baseURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("github: parse base url: %w", err)
		}
		c.BaseURL = u
	}
	c.UserAgent = "issue-retriever"
	return &Client{gh: c}, nil
}

// GetIssue retrieves a single issue by number.
func (c *Client) GetIssue(ctx context.Context, owner, repo string, number int) (models.Issue, error) {
	issue, _, err := c.gh.Issues.Get(ctx, owner, repo, number)
	if err != nil {
		return models.Issue{}, fmt.Errorf("github: get issue: %w", err)
	}
	return toIssue(issue), nil
}

// ListIssues fetches every issue of a repo matching state ("open" | "closed" | "all"),
// following pagination, in the order GitHub returns them.
// Pull requests are included, as the issues endpoint returns them too.
func (c *Client) ListIssues(ctx context.Context, owner, repo, state string) ([]models.Issue, error) {
	opts := &gh.IssueListByRepoOptions{
		State:       state,
		ListOptions: gh.ListOptions{PerPage: perPage},
	}

	var out []models.Issue
	for {
		page, resp, err := c.gh.Issues.ListByRepo(ctx, owner, repo, opts)
		if err != nil {
			return nil, fmt.Errorf("github: list issues: %w", err)
		}
		for _, issue := range page {
			out = append(out, toIssue(issue))
		}
		if resp == nil || resp.NextPage == 0 {
			return out, nil
		}
		opts.Page = resp.NextPage
	}
}

// ListComments returns an issue's comments in creation order.
func (c *Client) ListComments(ctx context.Context, owner, repo string, number int) ([]models.Comment, error) {
	opts := &gh.IssueListCommentsOptions{
		Sort:        gh.Ptr("created"),
		Direction:   gh.Ptr("asc"),
		ListOptions: gh.ListOptions{PerPage: perPage},
	}

	var out []models.Comment
	for {
		page, resp, err := c.gh.Issues.ListComments(ctx, owner, repo, number, opts)
		if err != nil {
			return nil, fmt.Errorf("github: list comments: %w", err)
		}
		for _, comment := range page {
			out = append(out, models.Comment{ID: comment.GetID(), Body: comment.GetBody()})
		}
		if resp == nil || resp.NextPage == 0 {
			return out, nil
		}
		opts.Page = resp.NextPage
	}
}

func toIssue(issue *gh.Issue) models.Issue {
	return models.Issue{
		Number:  issue.GetNumber(),
		Title:   issue.GetTitle(),
		Body:    issue.Body,
		State:   issue.GetState(),
		HTMLURL: issue.GetHTMLURL(),
	}
}
