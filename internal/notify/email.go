package notify

import (
    "bytes"
    "context"
    "encoding/json"
    "fmt"
    "io"
    "net/http"
    "time"
)

// Sender delivers one email.  The dispatcher treats any returned error as a
// failed channel attempt and records it in the delivery log.
type Sender interface {
    Send(ctx context.Context, to, subject, htmlBody string) error
}

// HTTPSender posts messages to a transactional email provider's JSON API,
// authenticated with a bearer key.  One retry on transport errors and 5xx
// responses; 4xx responses are configuration problems and fail immediately.
type HTTPSender struct {
    apiURL string
    apiKey string
    from   string
    client *http.Client
}

// NewHTTPSender builds an email sender for the configured provider.
func NewHTTPSender(apiURL, apiKey, from string) *HTTPSender {
    return &HTTPSender{
        apiURL: apiURL,
        apiKey: apiKey,
        from:   from,
        client: &http.Client{Timeout: 10 * time.Second},
    }
}

type emailPayload struct {
    From    string `json:"from"`
    To      string `json:"to"`
    Subject string `json:"subject"`
    HTML    string `json:"html"`
}

// Send implements Sender.
func (s *HTTPSender) Send(ctx context.Context, to, subject, htmlBody string) error {
    body, err := json.Marshal(emailPayload{From: s.from, To: to, Subject: subject, HTML: htmlBody})
    if err != nil {
        return err
    }

    var lastErr error
    for attempt := 0; attempt < 2; attempt++ {
        req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, bytes.NewReader(body))
        if err != nil {
            return err
        }
        req.Header.Set("Content-Type", "application/json")
        req.Header.Set("Authorization", "Bearer "+s.apiKey)

        resp, err := s.client.Do(req)
        if err != nil {
            lastErr = err
            continue
        }
        respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
        resp.Body.Close()

        switch {
        case resp.StatusCode >= 200 && resp.StatusCode < 300:
            return nil
        case resp.StatusCode >= 500:
            lastErr = fmt.Errorf("email provider returned %d: %s", resp.StatusCode, respBody)
            continue
        default:
            return fmt.Errorf("email provider returned %d: %s", resp.StatusCode, respBody)
        }
    }
    return lastErr
}
