package courses

import (
  "context"
  "errors"
  "fmt"
  "net/http"
  "sync"
  "time"

  "github.com/cenkalti/backoff/v4"
  "github.com/go-playground/validator/v10"
  "github.com/go-resty/resty/v2"
  "github.com/seatradar/seatradar/internal/models"
  log "github.com/sirupsen/logrus"
)

const (
  loginPath    = "/auth/login"
  listingsPath = "/courses"
)

var (
  ErrRateLimited      = errors.New("upstream rate limited")
  ErrAuthRejected     = errors.New("upstream rejected authentication")
  ErrMalformedPayload = errors.New("malformed upstream payload")
)

type Config struct {
  BaseURL  string `validate:"required"`
  Username string
  Password string

  SessionTTL    time.Duration
  MaxAttempts   int
  RetryInterval time.Duration
}

func (c *Config) Validate() error {
  return validator.New().Struct(c)
}

type Dependencies struct {
  Client *resty.Client `validate:"required"`
}

func (c *Dependencies) Validate() error {
  return validator.New().Struct(c)
}

type session struct {
  token    string
  issuedAt time.Time
}

// Client fetches per-department section listings from the upstream
// course API. It holds one authenticated session, renewed when absent
// or older than SessionTTL. Nothing else is cached.
type Client struct {
  config Config
  deps   Dependencies

  mu      sync.Mutex
  session *session

  now func() time.Time
}

func NewClient(config Config, deps Dependencies) (*Client, error) {
  if err := deps.Validate(); err != nil {
    return nil, fmt.Errorf("invalid dependencies: %w", err)
  }
  if err := config.Validate(); err != nil {
    return nil, fmt.Errorf("invalid config: %w", err)
  }

  if config.SessionTTL <= 0 {
    config.SessionTTL = 20 * time.Minute
  }
  if config.MaxAttempts <= 0 {
    config.MaxAttempts = 3
  }
  if config.RetryInterval <= 0 {
    config.RetryInterval = 500 * time.Millisecond
  }

  return &Client{
    config: config,
    deps:   deps,
    now:    time.Now,
  }, nil
}

// FetchDepartmentListings returns the normalized section records of
// one department listing. Any failure yields an error and no records:
// callers treat "no data" and "error" identically and never see
// fabricated entries.
func (c *Client) FetchDepartmentListings(ctx context.Context, term, department string) ([]models.RawSectionRecord, error) {
  token, err := c.ensureSession(ctx)
  if err != nil {
    return nil, fmt.Errorf("c.ensureSession: %w", err)
  }

  var body []byte

  operation := func() error {
    req := c.deps.Client.R().
      SetContext(ctx).
      SetQueryParams(map[string]string{
        "term":   term,
        "course": department,
      })

    if token != "" {
      req.SetHeader("Authorization", "Bearer "+token)
    }

    resp, reqErr := req.Get(c.config.BaseURL + listingsPath)
    if reqErr != nil {
      return backoff.Permanent(fmt.Errorf("req.Get: %w", reqErr))
    }

    switch {
    case resp.StatusCode() == http.StatusTooManyRequests:
      return fmt.Errorf("%w: department %s", ErrRateLimited, department)

    case resp.StatusCode() == http.StatusUnauthorized,
      resp.StatusCode() == http.StatusForbidden:
      // Invalidate for renewal on the next call instead of logging in
      // inline: avoids login storms when many departments fail at once.
      c.invalidateSession()
      return backoff.Permanent(fmt.Errorf("%w: status %d", ErrAuthRejected, resp.StatusCode()))

    case resp.StatusCode() != http.StatusOK:
      return backoff.Permanent(fmt.Errorf("unexpected status %d", resp.StatusCode()))
    }

    body = resp.Body()

    return nil
  }

  policy := backoff.NewExponentialBackOff()
  policy.InitialInterval = c.config.RetryInterval

  err = backoff.Retry(operation,
    backoff.WithContext(
      backoff.WithMaxRetries(policy, uint64(c.config.MaxAttempts-1)), ctx))
  if err != nil {
    return nil, fmt.Errorf("listings fetch: %w", err)
  }

  records, err := normalizeListings(body)
  if err != nil {
    log.
      WithField("department", department).
      Errorf("courses.Client: malformed listing payload: %v", err)

    return nil, fmt.Errorf("normalizeListings: %w", err)
  }

  return records, nil
}

func (c *Client) ensureSession(ctx context.Context) (string, error) {
  // Public deployments run without credentials and without a session.
  if c.config.Username == "" {
    return "", nil
  }

  c.mu.Lock()
  defer c.mu.Unlock()

  if c.session != nil && c.now().Sub(c.session.issuedAt) < c.config.SessionTTL {
    return c.session.token, nil
  }

  token, err := c.login(ctx)
  if err != nil {
    return "", fmt.Errorf("c.login: %w", err)
  }

  c.session = &session{
    token:    token,
    issuedAt: c.now(),
  }

  log.Info("courses.Client: session renewed")

  return token, nil
}

func (c *Client) login(ctx context.Context) (string, error) {
  resp, err := c.deps.Client.R().
    SetContext(ctx).
    SetBody(map[string]string{
      "username": c.config.Username,
      "password": c.config.Password,
    }).
    Post(c.config.BaseURL + loginPath)
  if err != nil {
    return "", fmt.Errorf("req.Post: %w", err)
  }

  if resp.StatusCode() != http.StatusOK {
    return "", fmt.Errorf("%w: login status %d", ErrAuthRejected, resp.StatusCode())
  }

  token := findToken(resp.Body())
  if token == "" {
    return "", fmt.Errorf("%w: no session token in login response", ErrMalformedPayload)
  }

  return token, nil
}

func (c *Client) invalidateSession() {
  c.mu.Lock()
  defer c.mu.Unlock()

  c.session = nil
}
