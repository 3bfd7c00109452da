package classtop

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/goliatone/go-errors"
)

// Typed endpoint operations. These are thin parameterizations of Do over
// fixed paths; all classification and side effects live in the dispatcher.

const (
	// DefaultPage is the first page of a paginated listing
	DefaultPage = 1
	// DefaultPageSize matches the server default
	DefaultPageSize = 20
)

// Health checks the server without authentication.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	out := &Health{}
	if err := c.Do(ctx, http.MethodGet, "/health", nil, out); err != nil {
		return nil, err
	}
	return out, nil
}

// FetchStats returns fleet-wide aggregates.
func (c *Client) FetchStats(ctx context.Context) (*Statistics, error) {
	out := &Statistics{}
	if err := c.Do(ctx, http.MethodGet, "/statistics", nil, out); err != nil {
		return nil, err
	}
	return out, nil
}

// FetchClientStats returns per-device aggregates.
func (c *Client) FetchClientStats(ctx context.Context) ([]ClientStatistics, error) {
	out := []ClientStatistics{}
	if err := c.Do(ctx, http.MethodGet, "/statistics/clients", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// FetchClients lists every managed client.
func (c *Client) FetchClients(ctx context.Context) ([]ManagedClient, error) {
	out := []ManagedClient{}
	if err := c.Do(ctx, http.MethodGet, "/clients", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// FetchClientsPage lists managed clients one page at a time. Non-positive
// arguments fall back to the server defaults (page 1, 20 items).
func (c *Client) FetchClientsPage(ctx context.Context, page, pageSize int) (*ClientPage, error) {
	if page <= 0 {
		page = DefaultPage
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	query := url.Values{}
	query.Set("page", fmt.Sprintf("%d", page))
	query.Set("page_size", fmt.Sprintf("%d", pageSize))

	out := &ClientPage{}
	if err := c.Do(ctx, http.MethodGet, "/clients/paginated?"+query.Encode(), nil, out); err != nil {
		return nil, err
	}
	return out, nil
}

// FetchClient returns a single managed client.
func (c *Client) FetchClient(ctx context.Context, id int) (*ManagedClient, error) {
	out := &ManagedClient{}
	if err := c.Do(ctx, http.MethodGet, fmt.Sprintf("/clients/%d", id), nil, out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateClient registers a managed client. The payload is validated locally
// and its UUID derived from the API URL when omitted.
func (c *Client) CreateClient(ctx context.Context, payload RegisterClientPayload) (*ManagedClient, error) {
	if err := payload.Validate(); err != nil {
		return nil, errors.Wrap(err, errors.CategoryValidation, "invalid client registration payload")
	}
	payload.normalize()

	out := &ManagedClient{}
	if err := c.Do(ctx, http.MethodPost, "/clients/register", payload, out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateClient applies a partial update to a managed client.
func (c *Client) UpdateClient(ctx context.Context, id int, payload UpdateClientPayload) error {
	if err := payload.Validate(); err != nil {
		return errors.Wrap(err, errors.CategoryValidation, "invalid client update payload")
	}

	ack := &Message{}
	return c.Do(ctx, http.MethodPut, fmt.Sprintf("/clients/%d", id), payload, ack)
}

// RemoveClient deletes a managed client.
func (c *Client) RemoveClient(ctx context.Context, id int) error {
	ack := &Message{}
	return c.Do(ctx, http.MethodDelete, fmt.Sprintf("/clients/%d", id), nil, ack)
}

// FetchClientCourses lists the courses synced from one client.
func (c *Client) FetchClientCourses(ctx context.Context, id int) ([]Course, error) {
	out := []Course{}
	if err := c.Do(ctx, http.MethodGet, fmt.Sprintf("/clients/%d/courses", id), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// FetchClientSchedule lists the timetable synced from one client.
func (c *Client) FetchClientSchedule(ctx context.Context, id int) ([]ScheduleEntry, error) {
	out := []ScheduleEntry{}
	if err := c.Do(ctx, http.MethodGet, fmt.Sprintf("/clients/%d/schedule", id), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// FetchSettings lists the server's configuration entries.
func (c *Client) FetchSettings(ctx context.Context) ([]Setting, error) {
	out := []Setting{}
	if err := c.Do(ctx, http.MethodGet, "/settings", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// FetchSetting returns one configuration entry.
func (c *Client) FetchSetting(ctx context.Context, key string) (*Setting, error) {
	out := &Setting{}
	if err := c.Do(ctx, http.MethodGet, "/settings/"+url.PathEscape(key), nil, out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateSetting replaces one configuration value.
func (c *Client) UpdateSetting(ctx context.Context, key, value string) error {
	ack := &Message{}
	payload := map[string]string{"value": value}
	return c.Do(ctx, http.MethodPut, "/settings/"+url.PathEscape(key), payload, ack)
}
