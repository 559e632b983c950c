// Package apiclient is the HTTP implementation of reorder.Gateway against
// the catalog API.
package apiclient

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"github.com/rodokubooks/rodoku/pkg/reorder"
)

const defaultTimeout = 10 * time.Second

// Client talks to the catalog API with bearer-token auth.
type Client struct {
	http *resty.Client
}

// Options configures a Client.
type Options struct {
	BaseURL string
	Token   string
	// Timeout per request; defaults to 10s.
	Timeout time.Duration
}

// New creates a Client. BaseURL is required.
func New(opts Options) (*Client, error) {
	if opts.BaseURL == "" {
		return nil, errors.New("apiclient: base URL is required")
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	http := resty.New().
		SetBaseURL(opts.BaseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	if opts.Token != "" {
		http.SetAuthToken(opts.Token)
	}

	return &Client{http: http}, nil
}

// FetchPage retrieves one page of chapters for an audiobook.
func (c *Client) FetchPage(ctx context.Context, audiobookID, page int) (*reorder.Page, error) {
	out := &reorder.Page{}
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("audiobook_id", fmt.Sprintf("%d", audiobookID)).
		SetQueryParam("page", fmt.Sprintf("%d", page)).
		SetResult(out).
		SetError(&errorResponse{}).
		Get("/chapters")
	if err != nil {
		return nil, &NetworkError{cause: err}
	}
	if resp.IsError() {
		return nil, classifyError(resp)
	}
	return out, nil
}

// UpdateChapterNumber persists a chapter's new ordering key.
func (c *Client) UpdateChapterNumber(ctx context.Context, chapterID, number int) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]int{"chapter_number": number}).
		SetError(&errorResponse{}).
		Patch(fmt.Sprintf("/chapters/%d", chapterID))
	if err != nil {
		return &NetworkError{cause: err}
	}
	if resp.IsError() {
		return classifyError(resp)
	}
	return nil
}

var _ reorder.Gateway = (*Client)(nil)
