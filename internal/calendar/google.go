// Package calendar adapts Google Calendar as the external availability
// source.  Connections are per volunteer and OAuth based; free/busy queries
// degrade to "not connected" instead of failing hard whenever credentials
// cannot be refreshed, so calendar trouble never blocks scheduling.
package calendar

import (
    "context"
    "errors"
    "log"
    "sync"
    "time"

    "golang.org/x/oauth2"
    "golang.org/x/oauth2/google"
    gcal "google.golang.org/api/calendar/v3"
    "google.golang.org/api/option"

    "github.com/serveteam/volunteer-scheduling/internal/config"
    "github.com/serveteam/volunteer-scheduling/internal/model"
    "github.com/serveteam/volunteer-scheduling/internal/repository"
)

// ErrNotConnected is returned when a volunteer has no usable calendar
// connection: never connected, explicitly disconnected, or the refresh
// token was rejected upstream.  Callers report a structured "not connected"
// result instead of an HTTP error.
var ErrNotConnected = errors.New("calendar not connected")

// upstreamTimeout bounds every OAuth and calendar API call.  No retries:
// failure downgrades to unavailable/unconnected rather than retry-looping.
const upstreamTimeout = 10 * time.Second

// expiryLeeway refreshes tokens slightly before their nominal expiry so a
// token never dies mid-request.
const expiryLeeway = time.Minute

// Service wraps the OAuth configuration and connection store.  The per-row
// mutexes serialize token refreshes for the same connection: two
// concurrent availability checks would otherwise both refresh and write
// racing values.  Last-writer-wins on the stored token is acceptable since
// both refreshes are equivalent, but the lock keeps the log readable.
type Service struct {
    oauth *oauth2.Config
    conns *repository.CalendarConnectionRepo

    mu    sync.Mutex
    locks map[uint64]*sync.Mutex // keyed by connection id
}

// NewService builds the adapter from app config.  When the OAuth client is
// not configured the service still constructs; Enabled() reports false and
// every check answers "not connected".
func NewService(cfg config.Config, conns *repository.CalendarConnectionRepo) *Service {
    return &Service{
        oauth: &oauth2.Config{
            ClientID:     cfg.GoogleClientID,
            ClientSecret: cfg.GoogleClientSecret,
            RedirectURL:  cfg.GoogleRedirectURL,
            Endpoint:     google.Endpoint,
            Scopes:       []string{gcal.CalendarReadonlyScope},
        },
        conns: conns,
        locks: make(map[uint64]*sync.Mutex),
    }
}

// Enabled reports whether an OAuth client is configured.
func (s *Service) Enabled() bool {
    return s.oauth.ClientID != "" && s.oauth.ClientSecret != ""
}

// AuthCodeURL builds the Google consent URL for the connect flow.  Offline
// access plus forced approval guarantees a refresh token on every connect,
// including reconnects.
func (s *Service) AuthCodeURL(state string) string {
    return s.oauth.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// Exchange swaps an authorization code for tokens.
func (s *Service) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
    ctx, cancel := context.WithTimeout(ctx, upstreamTimeout)
    defer cancel()
    return s.oauth.Exchange(ctx, code)
}

// PrimaryCalendar resolves the connected account's primary calendar.  For
// Google accounts the primary calendar id is the account email, which is
// stored as both the calendar id and the connected email.
func (s *Service) PrimaryCalendar(ctx context.Context, tok *oauth2.Token) (string, error) {
    ctx, cancel := context.WithTimeout(ctx, upstreamTimeout)
    defer cancel()
    srv, err := gcal.NewService(ctx, option.WithTokenSource(s.oauth.TokenSource(ctx, tok)))
    if err != nil {
        return "", err
    }
    cal, err := srv.Calendars.Get("primary").Context(ctx).Do()
    if err != nil {
        return "", err
    }
    return cal.Id, nil
}

func (s *Service) lockFor(connID uint64) *sync.Mutex {
    s.mu.Lock()
    defer s.mu.Unlock()
    l, ok := s.locks[connID]
    if !ok {
        l = &sync.Mutex{}
        s.locks[connID] = l
    }
    return l
}

// ensureFreshToken is the explicit two-phase refresh step: it returns a
// credential valid for at least expiryLeeway, refreshing and persisting it
// first when needed.  A failed exchange (revoked consent and the like)
// deactivates the connection and reports ErrNotConnected.
func (s *Service) ensureFreshToken(ctx context.Context, conn *model.CalendarConnection) (*oauth2.Token, error) {
    stored := &oauth2.Token{
        AccessToken:  conn.AccessToken,
        RefreshToken: conn.RefreshToken,
        Expiry:       conn.TokenExpiry,
    }
    if time.Now().UTC().Add(expiryLeeway).Before(conn.TokenExpiry) {
        return stored, nil
    }

    // Critical section per connection row; see Service doc.
    l := s.lockFor(conn.ID)
    l.Lock()
    defer l.Unlock()

    log.Printf("calendar: refreshing token connection_id=%d volunteer_id=%v", conn.ID, conn.VolunteerID)

    rctx, cancel := context.WithTimeout(ctx, upstreamTimeout)
    defer cancel()
    fresh, err := s.oauth.TokenSource(rctx, stored).Token()
    if err != nil {
        log.Printf("calendar: token refresh failed connection_id=%d: %v", conn.ID, err)
        if derr := s.conns.Deactivate(ctx, conn.ID); derr != nil {
            log.Printf("calendar: deactivate connection_id=%d failed: %v", conn.ID, derr)
        }
        return nil, ErrNotConnected
    }

    // Google may omit the refresh token on renewal; keep the stored one.
    refreshToken := fresh.RefreshToken
    if refreshToken == "" {
        refreshToken = conn.RefreshToken
    }
    if err := s.conns.UpdateTokens(ctx, conn.ID, fresh.AccessToken, refreshToken, fresh.Expiry.UTC()); err != nil {
        log.Printf("calendar: persisting refreshed token connection_id=%d failed: %v", conn.ID, err)
    }
    conn.AccessToken = fresh.AccessToken
    conn.RefreshToken = refreshToken
    conn.TokenExpiry = fresh.Expiry.UTC()
    return fresh, nil
}
