/*
Package outlook fetches calendar data from Microsoft Graph and turns it
into the engine's meeting records.

PURPOSE:
  Provides the CalendarSource collaborator: device-code OAuth2 against
  the Microsoft identity platform, a paged calendarView client, and a
  mapping layer from Graph events to engine.Meeting.

AUTH:
  Tokens are cached on disk and silently refreshed. A fresh sign-in
  runs the device code flow and prints the verification URL and code.

SEE ALSO:
  - engine/store.go: CalendarSource interface
  - api/handlers.go: meeting sync endpoint
*/
package outlook

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2"
)

const graphBaseURL = "https://graph.microsoft.com/v1.0"

// Client is an authenticated Microsoft Graph API client.
type Client struct {
	httpClient *http.Client
	timezone   string
}

// NewClient builds a Graph client over the authenticator's token.
// timezone is an IANA name ("Europe/Istanbul"); "" means UTC.
func NewClient(ctx context.Context, auth *Authenticator, timezone string) (*Client, error) {
	tok, err := auth.Token(ctx)
	if err != nil {
		return nil, err
	}
	return &Client{
		httpClient: oauth2.NewClient(ctx, auth.HTTPSource(ctx, tok)),
		timezone:   timezone,
	}, nil
}

// graphEvent is the Graph API shape of a calendar event.
type graphEvent struct {
	ID          string `json:"id"`
	Subject     string `json:"subject"`
	BodyPreview string `json:"bodyPreview"`
	IsAllDay    bool   `json:"isAllDay"`
	IsCancelled bool   `json:"isCancelled"`
	IsOnline    bool   `json:"isOnlineMeeting"`
	Type        string `json:"type"` // "singleInstance", "occurrence", "exception", "seriesMaster"
	Organizer   struct {
		EmailAddress struct {
			Name    string `json:"name"`
			Address string `json:"address"`
		} `json:"emailAddress"`
	} `json:"organizer"`
	Start struct {
		DateTime string `json:"dateTime"`
		TimeZone string `json:"timeZone"`
	} `json:"start"`
	End struct {
		DateTime string `json:"dateTime"`
		TimeZone string `json:"timeZone"`
	} `json:"end"`
	Location struct {
		DisplayName string `json:"displayName"`
	} `json:"location"`
}

// calendarViewResponse is the Graph API paged response for calendar events.
type calendarViewResponse struct {
	Value    []graphEvent `json:"value"`
	NextLink string       `json:"@odata.nextLink"`
}

// getCalendarView fetches events in [from, to) via the calendarView
// endpoint, following @odata.nextLink pages.
func (c *Client) getCalendarView(ctx context.Context, from, to time.Time) ([]graphEvent, error) {
	endpoint := fmt.Sprintf("%s/me/calendarView?startDateTime=%s&endDateTime=%s&$top=100",
		graphBaseURL,
		url.QueryEscape(from.UTC().Format(time.RFC3339)),
		url.QueryEscape(to.UTC().Format(time.RFC3339)),
	)

	var all []graphEvent
	for endpoint != "" {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		if c.timezone != "" {
			req.Header.Set("Prefer", fmt.Sprintf(`outlook.timezone="%s"`, c.timezone))
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("graph API request failed: %w", err)
		}
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("reading response body: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("graph API error %d: %s", resp.StatusCode, string(body))
		}

		var page calendarViewResponse
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, fmt.Errorf("decoding graph response: %w", err)
		}
		all = append(all, page.Value...)
		endpoint = page.NextLink
	}
	return all, nil
}
