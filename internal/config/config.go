package config

import (
  "context"
  "fmt"
  "strings"
  "time"

  "github.com/go-playground/validator/v10"
  "github.com/spf13/cast"
  "github.com/spf13/viper"
)

type Key = string

const (
  TelegramToken Key = "telegram_token"
  ChatIds       Key = "chat_ids"

  Term          Key = "term"
  Departments   Key = "departments"
  CheckInterval Key = "check_interval"

  APIBaseURL     Key = "api_base_url"
  APIUsername    Key = "api_username"
  APIPassword    Key = "api_password"
  SessionTTL     Key = "session_ttl"
  RequestTimeout Key = "request_timeout"

  ManifestPath Key = "manifest_path"

  MongodbHost     Key = "mongodb_host"
  MongodbPort     Key = "mongodb_port"
  MongodbUser     Key = "mongodb_user"
  MongodbPassword Key = "mongodb_password"
)

type Value struct {
  value any
}

func (v Value) String() string {
  return strings.TrimSpace(cast.ToString(v.value))
}

func (v Value) Int64() int64 {
  return cast.ToInt64(v.value)
}

func (v Value) Duration() time.Duration {
  return cast.ToDuration(v.value)
}

// DurationSeconds reads a duration that may be given as a bare number
// of seconds (CHECK_INTERVAL=30) or as a duration string ("45s").
func (v Value) DurationSeconds() time.Duration {
  if n, err := cast.ToInt64E(v.value); err == nil {
    return time.Duration(n) * time.Second
  }
  return cast.ToDuration(v.value)
}

func (v Value) Strings() []string {
  var out []string

  for _, part := range strings.Split(cast.ToString(v.value), ",") {
    if part = strings.TrimSpace(part); part != "" {
      out = append(out, part)
    }
  }

  return out
}

func (v Value) Int64s() ([]int64, error) {
  var out []int64

  for _, part := range v.Strings() {
    parsed, err := cast.ToInt64E(part)
    if err != nil {
      return nil, fmt.Errorf("cast.ToInt64E: %q: %w", part, err)
    }
    out = append(out, parsed)
  }

  return out, nil
}

// required holds the keys the process cannot start without.
type required struct {
  TelegramToken string  `validate:"required"`
  ChatIds       []int64 `validate:"required,min=1"`
}

func Init(_ context.Context) error {
  viper.AutomaticEnv()

  viper.SetDefault(Term, "252")
  viper.SetDefault(CheckInterval, "30s")
  viper.SetDefault(APIBaseURL, "https://api.free-courses.dev")
  viper.SetDefault(SessionTTL, "20m")
  viper.SetDefault(RequestTimeout, "10s")
  viper.SetDefault(ManifestPath, "tracked_sections.json")
  viper.SetDefault(MongodbPort, "27017")

  chatIds, err := Get(context.Background(), ChatIds).Int64s()
  if err != nil {
    return fmt.Errorf("invalid %s: %w", ChatIds, err)
  }

  err = validator.New().Struct(required{
    TelegramToken: Get(context.Background(), TelegramToken).String(),
    ChatIds:       chatIds,
  })
  if err != nil {
    return fmt.Errorf("missing required configuration: %w", err)
  }

  return nil
}

func Get(_ context.Context, key Key) Value {
  return Value{value: viper.Get(key)}
}
