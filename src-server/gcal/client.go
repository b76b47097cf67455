package gcal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// EventLister is the read side of the remote calendar consumed by the sync
// core. One call returns one page; callers drain NextPageToken themselves.
type EventLister interface {
	ListUpdatedSince(ctx context.Context, calendarID string, updatedMin time.Time, pageToken string) (*calendar.Events, error)
}

// Client is the full remote calendar surface used by the meeting services.
type Client interface {
	EventLister
	ListBetween(ctx context.Context, calendarID string, timeMin, timeMax time.Time) ([]*calendar.Event, error)
	Get(ctx context.Context, calendarID, eventID string) (*calendar.Event, error)
	Insert(ctx context.Context, calendarID string, event *calendar.Event) (*calendar.Event, error)
	Patch(ctx context.Context, calendarID, eventID string, event *calendar.Event) (*calendar.Event, error)
	Delete(ctx context.Context, calendarID, eventID string) error
}

// GoogleClient talks to the Google Calendar API. It is stateless per call and
// safe for concurrent use.
type GoogleClient struct {
	svc *calendar.Service
}

var _ Client = (*GoogleClient)(nil)

// NewGoogleClient builds a client from an oauth2 token JSON file. Token
// refresh and the consent flow are out of scope here; the file is expected to
// hold a usable token.
func NewGoogleClient(ctx context.Context, tokenPath string) (*GoogleClient, error) {
	raw, err := os.ReadFile(tokenPath)
	if err != nil {
		return nil, fmt.Errorf("NewGoogleClient: can't read token file: %w", err)
	}
	var token oauth2.Token
	if err := json.Unmarshal(raw, &token); err != nil {
		return nil, fmt.Errorf("NewGoogleClient: can't parse token file: %w", err)
	}
	svc, err := calendar.NewService(ctx, option.WithTokenSource(oauth2.StaticTokenSource(&token)))
	if err != nil {
		return nil, fmt.Errorf("NewGoogleClient: can't create calendar service: %w", err)
	}
	return &GoogleClient{svc: svc}, nil
}

func (c *GoogleClient) ListUpdatedSince(ctx context.Context, calendarID string, updatedMin time.Time, pageToken string) (*calendar.Events, error) {
	call := c.svc.Events.List(calendarID).
		UpdatedMin(updatedMin.UTC().Format(time.RFC3339)).
		ShowDeleted(true).
		SingleEvents(true).
		Context(ctx)
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}
	return call.Do()
}

func (c *GoogleClient) ListBetween(ctx context.Context, calendarID string, timeMin, timeMax time.Time) ([]*calendar.Event, error) {
	events := make([]*calendar.Event, 0)
	pageToken := ""
	for {
		call := c.svc.Events.List(calendarID).
			TimeMin(timeMin.UTC().Format(time.RFC3339)).
			TimeMax(timeMax.UTC().Format(time.RFC3339)).
			SingleEvents(true).
			OrderBy("startTime").
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		resp, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("GoogleClient.ListBetween: %w", err)
		}
		events = append(events, resp.Items...)
		pageToken = resp.NextPageToken
		if pageToken == "" {
			break
		}
	}
	return events, nil
}

func (c *GoogleClient) Get(ctx context.Context, calendarID, eventID string) (*calendar.Event, error) {
	return c.svc.Events.Get(calendarID, eventID).Context(ctx).Do()
}

func (c *GoogleClient) Insert(ctx context.Context, calendarID string, event *calendar.Event) (*calendar.Event, error) {
	return c.svc.Events.Insert(calendarID, event).Context(ctx).Do()
}

func (c *GoogleClient) Patch(ctx context.Context, calendarID, eventID string, event *calendar.Event) (*calendar.Event, error) {
	return c.svc.Events.Patch(calendarID, eventID, event).Context(ctx).Do()
}

func (c *GoogleClient) Delete(ctx context.Context, calendarID, eventID string) error {
	return c.svc.Events.Delete(calendarID, eventID).Context(ctx).Do()
}

// IsNotFound reports whether err is the remote API's 404.
func IsNotFound(err error) bool {
	var apiErr *googleapi.Error
	return errors.As(err, &apiErr) && apiErr.Code == 404
}
