package slack

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// SearchMatch is one hit from the platform's message search
type SearchMatch struct {
	TS      string `json:"ts"`
	Text    string `json:"text"`
	Channel struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"channel"`
}

type searchResponse struct {
	apiResponse
	Messages struct {
		Matches []SearchMatch `json:"matches"`
	} `json:"messages"`
}

// SearchDeployMessage looks for the root deployment message of a
// (repo, branch) pair in a channel. The query requires both names as exact
// substrings and is cut off at windowDays in the past, so an old thread for
// an unrelated deployment of the same branch name cannot be resurrected.
// Returns the most recent match, or nil when there is none.
func (c *Client) SearchDeployMessage(ctx context.Context, token, channel, repoName, branchName string, windowDays int) (*SearchMatch, error) {
	after := c.now().AddDate(0, 0, -windowDays).Format("2006-01-02")
	query := fmt.Sprintf("in:#%s %q %q after:%s", channel, repoName, branchName, after)

	params := url.Values{}
	params.Set("query", query)
	params.Set("sort", "timestamp")
	params.Set("sort_dir", "desc")
	params.Set("count", "20")

	var resp searchResponse
	if err := c.call(ctx, http.MethodGet, "search.messages", token, params, nil, &resp); err != nil {
		return nil, err
	}

	var best *SearchMatch
	for i := range resp.Messages.Matches {
		m := &resp.Messages.Matches[i]

		// search can fuzz across channels and partial words; require the
		// exact channel and both substrings before trusting a hit
		if m.Channel.Name != channel {
			continue
		}
		if !strings.Contains(m.Text, repoName) || !strings.Contains(m.Text, branchName) {
			continue
		}

		if best == nil || tsAfter(m.TS, best.TS) {
			best = m
		}
	}

	return best, nil
}

// tsAfter compares two platform message timestamps ("1700000000.000100")
func tsAfter(a, b string) bool {
	fa, errA := strconv.ParseFloat(a, 64)
	fb, errB := strconv.ParseFloat(b, 64)
	if errA != nil || errB != nil {
		return a > b
	}
	return fa > fb
}

// withNow overrides the clock; test hook
func (c *Client) withNow(now func() time.Time) *Client {
	c.now = now
	return c
}
