package courses

import (
  "context"
  "encoding/json"
  "net/http"
  "net/http/httptest"
  "sync/atomic"
  "testing"
  "time"

  "github.com/go-resty/resty/v2"
  "github.com/samber/lo"
  "github.com/stretchr/testify/assert"
  "github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, server *httptest.Server, config Config) *Client {
  t.Helper()

  config.BaseURL = server.URL
  config.RetryInterval = time.Millisecond

  client, err := NewClient(config, Dependencies{
    Client: resty.NewWithClient(server.Client()),
  })
  require.NoError(t, err)

  return client
}

func TestFetchListingsBareArray(t *testing.T) {
  server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
    require.Equal(t, listingsPath, r.URL.Path)
    require.Equal(t, "252", r.URL.Query().Get("term"))
    require.Equal(t, "EE", r.URL.Query().Get("course"))

    _ = json.NewEncoder(w).Encode([]map[string]any{
      {"crn": 22716, "course": "EE207", "section": "02", "available": 3, "capacity": 25, "enrolled": 22},
      {"crn": "22425", "course": "EE271", "section": "53", "seats": "0", "total": "30"},
    })
  }))
  defer server.Close()

  client := newTestClient(t, server, Config{})

  records, err := client.FetchDepartmentListings(context.Background(), "252", "EE")
  require.NoError(t, err)
  require.Len(t, records, 2)

  assert.Equal(t, "22716", records[0].CRN)
  assert.Equal(t, "EE207", records[0].CourseCode)
  assert.Equal(t, lo.ToPtr(int64(3)), records[0].Available)
  assert.Equal(t, lo.ToPtr(int64(25)), records[0].Capacity)
  assert.Equal(t, lo.ToPtr(int64(22)), records[0].Enrolled)

  // String-typed seat fields are coerced; absent enrolled stays nil.
  assert.Equal(t, "22425", records[1].CRN)
  assert.Equal(t, lo.ToPtr(int64(0)), records[1].Available)
  assert.Equal(t, lo.ToPtr(int64(30)), records[1].Capacity)
  assert.Nil(t, records[1].Enrolled)
}

func TestFetchListingsObjectShapes(t *testing.T) {
  for _, field := range []string{"data", "courses"} {
    t.Run(field, func(t *testing.T) {
      server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        _ = json.NewEncoder(w).Encode(map[string]any{
          field: []map[string]any{
            {"courseReferenceNumber": "20305", "subjectCourse": "ENGL214", "seatsAvailable": 1, "maxEnrollment": 40},
          },
        })
      }))
      defer server.Close()

      client := newTestClient(t, server, Config{})

      records, err := client.FetchDepartmentListings(context.Background(), "252", "ENGL")
      require.NoError(t, err)
      require.Len(t, records, 1)

      assert.Equal(t, "20305", records[0].CRN)
      assert.Equal(t, "ENGL214", records[0].CourseCode)
      assert.Equal(t, lo.ToPtr(int64(1)), records[0].Available)
      assert.Equal(t, lo.ToPtr(int64(40)), records[0].Capacity)
    })
  }
}

func TestFetchListingsMalformedPayload(t *testing.T) {
  tests := []struct {
    name string
    body string
  }{
    {name: "not json", body: `<html>maintenance</html>`},
    {name: "object without array", body: `{"status":"ok"}`},
    {name: "scalar", body: `42`},
  }

  for _, tt := range tests {
    t.Run(tt.name, func(t *testing.T) {
      server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
        _, _ = w.Write([]byte(tt.body))
      }))
      defer server.Close()

      client := newTestClient(t, server, Config{})

      records, err := client.FetchDepartmentListings(context.Background(), "252", "EE")
      require.ErrorIs(t, err, ErrMalformedPayload)
      require.Empty(t, records, "a malformed payload must never fabricate data")
    })
  }
}

func TestFetchListingsRateLimitedRetries(t *testing.T) {
  var calls atomic.Int64

  server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
    if calls.Add(1) <= 2 {
      w.WriteHeader(http.StatusTooManyRequests)
      return
    }
    _, _ = w.Write([]byte(`[{"crn":"22716","available":0,"capacity":25}]`))
  }))
  defer server.Close()

  client := newTestClient(t, server, Config{MaxAttempts: 3})

  records, err := client.FetchDepartmentListings(context.Background(), "252", "EE")
  require.NoError(t, err)
  require.Len(t, records, 1)
  require.EqualValues(t, 3, calls.Load())
}

func TestFetchListingsRateLimitedExhaustsAttempts(t *testing.T) {
  var calls atomic.Int64

  server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
    calls.Add(1)
    w.WriteHeader(http.StatusTooManyRequests)
  }))
  defer server.Close()

  client := newTestClient(t, server, Config{MaxAttempts: 3})

  _, err := client.FetchDepartmentListings(context.Background(), "252", "EE")
  require.ErrorIs(t, err, ErrRateLimited)
  require.EqualValues(t, 3, calls.Load())
}

func TestSessionLoginRenewalAndInvalidation(t *testing.T) {
  var (
    logins  atomic.Int64
    reject  atomic.Bool
    current atomic.Value
  )
  current.Store("")

  server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
    if r.URL.Path == loginPath {
      logins.Add(1)
      token := "token-" + time.Now().Format("150405.000000000")
      current.Store(token)
      _ = json.NewEncoder(w).Encode(map[string]string{"token": token})
      return
    }

    if reject.Load() || r.Header.Get("Authorization") != "Bearer "+current.Load().(string) {
      reject.Store(false)
      w.WriteHeader(http.StatusUnauthorized)
      return
    }
    _, _ = w.Write([]byte(`[]`))
  }))
  defer server.Close()

  client := newTestClient(t, server, Config{
    Username:   "radar",
    Password:   "secret",
    SessionTTL: time.Hour,
  })

  _, err := client.FetchDepartmentListings(context.Background(), "252", "EE")
  require.NoError(t, err)
  require.EqualValues(t, 1, logins.Load())

  // Within TTL the session is reused, no second login.
  _, err = client.FetchDepartmentListings(context.Background(), "252", "EE")
  require.NoError(t, err)
  require.EqualValues(t, 1, logins.Load())

  // An auth-rejected call fails without an inline re-login...
  reject.Store(true)

  _, err = client.FetchDepartmentListings(context.Background(), "252", "EE")
  require.ErrorIs(t, err, ErrAuthRejected)
  require.EqualValues(t, 1, logins.Load())

  // ...and the next call renews the session first.
  _, err = client.FetchDepartmentListings(context.Background(), "252", "EE")
  require.NoError(t, err)
  require.EqualValues(t, 2, logins.Load())
}

func TestSessionExpiresAfterTTL(t *testing.T) {
  var logins atomic.Int64

  server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
    if r.URL.Path == loginPath {
      logins.Add(1)
      _ = json.NewEncoder(w).Encode(map[string]string{"token": "t"})
      return
    }
    _, _ = w.Write([]byte(`[]`))
  }))
  defer server.Close()

  client := newTestClient(t, server, Config{
    Username:   "radar",
    Password:   "secret",
    SessionTTL: time.Minute,
  })

  clock := time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)
  client.now = func() time.Time { return clock }

  _, err := client.FetchDepartmentListings(context.Background(), "252", "EE")
  require.NoError(t, err)

  clock = clock.Add(2 * time.Minute)

  _, err = client.FetchDepartmentListings(context.Background(), "252", "EE")
  require.NoError(t, err)
  require.EqualValues(t, 2, logins.Load())
}
