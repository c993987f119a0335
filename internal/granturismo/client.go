// Package granturismo talks to the remote game-metadata service. Responses
// are returned as the exact text received so that persisting them never
// alters byte-for-byte on-disk content.
package granturismo

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/cesargomez89/gtstats/internal/constants"
	"github.com/cesargomez89/gtstats/internal/httpclient"
)

type Client struct {
	baseURL    string // community content modules (meta, localize, tags)
	apiBaseURL string // profile, course_record, event endpoints
	httpClient *httpclient.Client
}

func NewClient(baseURL, apiBaseURL string, hc *httpclient.Client) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiBaseURL: strings.TrimSuffix(apiBaseURL, "/"),
		httpClient: hc,
	}
}

// GetMeta fetches the car/course/category definitions module.
func (c *Client) GetMeta(ctx context.Context) (string, error) {
	return c.get(ctx, "meta", c.baseURL+constants.PathMeta)
}

// GetLocalize fetches the display-name localization module.
func (c *Client) GetLocalize(ctx context.Context) (string, error) {
	return c.get(ctx, "localize", c.baseURL+constants.PathLocalize)
}

// GetTags fetches the car tag table.
func (c *Client) GetTags(ctx context.Context) (string, error) {
	return c.get(ctx, "tags", c.baseURL+constants.PathTags)
}

// FetchProfile fetches one user's raw profile document.
func (c *Client) FetchProfile(ctx context.Context, userNo string) (string, error) {
	return c.post(ctx, "profile", c.apiBaseURL+constants.PathProfile, url.Values{
		"job":     {"1"},
		"user_no": {userNo},
	})
}

// FetchCourseRecord fetches one user's course records for a single category.
func (c *Client) FetchCourseRecord(ctx context.Context, userNo, categoryID string) (string, error) {
	return c.post(ctx, "course_record", c.apiBaseURL+constants.PathCourseRecord, url.Values{
		"category_id": {categoryID},
		"course_id":   {"-1"}, // ignored by the remote service
		"is_category": {"1"},
		"job":         {"1"},
		"user_no":     {userNo},
	})
}

// FetchEventCalendar fetches the daily-race event calendar.
func (c *Client) FetchEventCalendar(ctx context.Context) (string, error) {
	return c.post(ctx, "event", c.apiBaseURL+constants.PathEvent, url.Values{
		"channel_id_csv": {"1,2,3"},
		"job":            {"3"},
	})
}

// FetchEvent fetches the detail document for a single event id.
func (c *Client) FetchEvent(ctx context.Context, eventID string) (string, error) {
	return c.post(ctx, "event", c.apiBaseURL+constants.PathEvent, url.Values{
		"event_id_csv": {eventID},
		"job":          {"1"},
	})
}

func (c *Client) get(ctx context.Context, endpoint, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("%s: failed to create request: %w", endpoint, err)
	}
	return c.do(endpoint, req)
}

func (c *Client) post(ctx context.Context, endpoint, rawURL string, params url.Values) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL+"?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("%s: failed to create request: %w", endpoint, err)
	}
	return c.do(endpoint, req)
}

func (c *Client) do(endpoint string, req *http.Request) (string, error) {
	resp, err := c.httpClient.Do(req.Context(), req)
	if err != nil {
		return "", fmt.Errorf("%s: request failed: %w", endpoint, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%s: remote returned status %d", endpoint, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%s: failed to read response: %w", endpoint, err)
	}
	return string(body), nil
}
