package stringer

import (
  "regexp"
  "strconv"
  "strings"
)

var regexNonDigit = regexp.MustCompile(`[^0-9]`)

func Strip(s string) string {
  return strings.TrimSpace(s)
}

func IsEmptyStr(s string) bool {
  return Strip(s) == ""
}

func NormalizeIntStr(s string) string {
  return regexNonDigit.ReplaceAllLiteralString(s, "")
}

// ParseIntStr extracts the digits of s and parses them. Returns false
// when s carries no digits at all: callers must not mistake missing
// data for zero.
func ParseIntStr(s string) (int64, bool) {
  s = NormalizeIntStr(s)
  if s == "" {
    return 0, false
  }

  v, err := strconv.ParseInt(s, 10, 64)
  if err != nil {
    return 0, false
  }

  return v, true
}
