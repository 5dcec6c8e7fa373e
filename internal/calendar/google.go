package calendar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"hamstercal-go/internal/config"
	"hamstercal-go/internal/hamstercal"
)

// GoogleRemote talks to Google Calendar v3.
//
// Login uses the OAuth2 resource-owner password grant against the configured
// token endpoint; the issued oauth2.Token is serialized to JSON and that JSON
// is the opaque token the CredentialStore keeps. ResumeSession rebuilds an
// authorized client from it; expired access tokens are refreshed on use.
//
// Google's own token endpoint does not offer the password grant, so Login
// needs a token_url that does (an identity proxy or a test server).
type GoogleRemote struct {
	oauth      *oauth2.Config
	endpoint   string
	timeZone   string
	httpClient *http.Client // base transport for token and API calls; nil means http.DefaultClient
}

var _ hamstercal.Remote = (*GoogleRemote)(nil)

// NewGoogleRemote creates a GoogleRemote from configuration.
func NewGoogleRemote(cfg config.CalendarConfig) *GoogleRemote {
	endpoint := google.Endpoint
	if cfg.AuthURL != "" {
		endpoint.AuthURL = cfg.AuthURL
	}
	if cfg.TokenURL != "" {
		endpoint.TokenURL = cfg.TokenURL
	}

	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = []string{gcal.CalendarScope}
	}

	return &GoogleRemote{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint:     endpoint,
			Scopes:       scopes,
		},
		endpoint: cfg.Endpoint,
		timeZone: cfg.TimeZone,
	}
}

// WithHTTPClient sets the base HTTP client used for token and API requests.
func (g *GoogleRemote) WithHTTPClient(c *http.Client) *GoogleRemote {
	g.httpClient = c
	return g
}

func (g *GoogleRemote) oauthContext(ctx context.Context) context.Context {
	if g.httpClient == nil {
		return ctx
	}
	return context.WithValue(ctx, oauth2.HTTPClient, g.httpClient)
}

// Login exchanges user and password for a token.
func (g *GoogleRemote) Login(ctx context.Context, user, password string) (string, error) {
	tok, err := g.oauth.PasswordCredentialsToken(g.oauthContext(ctx), user, password)
	if err != nil {
		return "", classify(err)
	}

	data, err := json.Marshal(tok)
	if err != nil {
		return "", fmt.Errorf("encoding token: %w", err)
	}
	return string(data), nil
}

// ResumeSession builds a Calendar client from a stored token. No request is
// made until the session is used.
func (g *GoogleRemote) ResumeSession(ctx context.Context, token string) (hamstercal.Session, error) {
	var tok oauth2.Token
	if err := json.Unmarshal([]byte(token), &tok); err != nil {
		return nil, &RemoteError{Class: "MalformedToken", Message: err.Error(), Err: hamstercal.ErrUnauthorized}
	}

	client := g.oauth.Client(g.oauthContext(ctx), &tok)
	opts := []option.ClientOption{option.WithHTTPClient(client)}
	if g.endpoint != "" {
		opts = append(opts, option.WithEndpoint(g.endpoint))
	}

	svc, err := gcal.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating calendar service: %w", err)
	}
	return &googleSession{svc: svc, client: client, timeZone: g.timeZone}, nil
}

type googleSession struct {
	svc      *gcal.Service
	client   *http.Client
	timeZone string
}

// ListCalendars pages through the user's calendar list.
func (s *googleSession) ListCalendars(ctx context.Context) ([]*hamstercal.Calendar, error) {
	var calendars []*hamstercal.Calendar
	pageToken := ""
	for {
		call := s.svc.CalendarList.List().Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		list, err := call.Do()
		if err != nil {
			return nil, classify(err)
		}
		for _, entry := range list.Items {
			calendars = append(calendars, &hamstercal.Calendar{ID: entry.Id, Title: entry.Summary, TimeZone: entry.TimeZone})
		}
		if list.NextPageToken == "" {
			return calendars, nil
		}
		pageToken = list.NextPageToken
	}
}

// InsertEvent inserts ev with its key as the event id, so a repeated
// insert is rejected by Google with 409 instead of creating a duplicate.
//
// Event times carry no offset, so Google needs a zone: the configured
// time_zone if set, otherwise the zone of the target calendar.
func (s *googleSession) InsertEvent(ctx context.Context, cal *hamstercal.Calendar, ev *hamstercal.Event) error {
	tz := s.timeZone
	if tz == "" {
		tz = cal.TimeZone
	}
	if tz == "" {
		return &RemoteError{Class: "MissingTimeZone", Message: fmt.Sprintf("calendar %q has no time zone and calendar.time_zone is unset", cal.Title)}
	}

	event := &gcal.Event{
		Id:          ev.Key,
		Summary:     ev.Title,
		Description: ev.Description,
		Start:       &gcal.EventDateTime{DateTime: ev.Start, TimeZone: tz},
		End:         &gcal.EventDateTime{DateTime: ev.End, TimeZone: tz},
	}
	if _, err := s.svc.Events.Insert(cal.ID, event).Context(ctx).Do(); err != nil {
		return classify(err)
	}
	return nil
}

func (s *googleSession) Close() error {
	s.client.CloseIdleConnections()
	return nil
}

// classify maps OAuth2 and Google API errors onto RemoteError, marking
// authorization failures with hamstercal.ErrUnauthorized and duplicate ids
// with hamstercal.ErrEventExists.
func classify(err error) error {
	var rerr *oauth2.RetrieveError
	if errors.As(err, &rerr) {
		class := rerr.ErrorCode
		if class == "" {
			class = "oauth2.RetrieveError"
		}
		msg := rerr.ErrorDescription
		if msg == "" {
			msg = err.Error()
		}
		return &RemoteError{Class: class, Message: msg, Err: errors.Join(hamstercal.ErrUnauthorized, err)}
	}

	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		class := fmt.Sprintf("googleapi.Error %d", gerr.Code)
		switch gerr.Code {
		case http.StatusUnauthorized:
			return &RemoteError{Class: class, Message: gerr.Message, Err: errors.Join(hamstercal.ErrUnauthorized, err)}
		case http.StatusConflict:
			return &RemoteError{Class: class, Message: gerr.Message, Err: errors.Join(hamstercal.ErrEventExists, err)}
		default:
			return &RemoteError{Class: class, Message: gerr.Message, Err: err}
		}
	}

	return err
}
