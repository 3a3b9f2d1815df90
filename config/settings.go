package config

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

// Settings is the effective key/value mapping of a section: the DEFAULT
// entries overlaid by the section's own entries. The document layer stores
// raw strings only; list-typedness and truthiness interpretation belong to
// the consumer, which is what the typed getters below implement.
type Settings map[string]string

// Truthiness follows the conventions of the conf format: anything in the
// true set reads as true, anything in the false set as false, and other
// values fall back to the caller's default.
var (
	trueValues  = map[string]struct{}{"1": {}, "true": {}, "yes": {}, "on": {}, "t": {}, "y": {}}
	falseValues = map[string]struct{}{"0": {}, "false": {}, "no": {}, "off": {}, "f": {}, "n": {}}
)

// Has reports whether key is present.
func (s Settings) Has(key string) bool {
	_, ok := s[key]
	return ok
}

// Keys returns all keys in sorted order.
func (s Settings) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// GetString returns the value for key, or defaultVal when absent.
func (s Settings) GetString(key, defaultVal string) string {
	if v, ok := s[key]; ok {
		return v
	}
	return defaultVal
}

// GetInt returns the value for key parsed as an integer, or defaultVal
// when absent or unparseable.
func (s Settings) GetInt(key string, defaultVal int) int {
	v, ok := s[key]
	if !ok {
		return defaultVal
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return defaultVal
	}
	return n
}

// GetFloat64 returns the value for key parsed as a float, or defaultVal
// when absent or unparseable.
func (s Settings) GetFloat64(key string, defaultVal float64) float64 {
	v, ok := s[key]
	if !ok {
		return defaultVal
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return defaultVal
	}
	return f
}

// GetBool interprets the value for key using the conf truthiness rules.
// Values outside both sets return defaultVal.
func (s Settings) GetBool(key string, defaultVal bool) bool {
	v, ok := s[key]
	if !ok {
		return defaultVal
	}
	lowered := strings.ToLower(strings.TrimSpace(v))
	if _, ok := trueValues[lowered]; ok {
		return true
	}
	if _, ok := falseValues[lowered]; ok {
		return false
	}
	return defaultVal
}

// GetDuration returns the value for key as a time.Duration. Bare numbers
// are seconds, matching the conf format's interval tunables; otherwise the
// value must be a Go duration string.
func (s Settings) GetDuration(key string, defaultVal time.Duration) time.Duration {
	v, ok := s[key]
	if !ok {
		return defaultVal
	}
	v = strings.TrimSpace(v)
	if secs, err := strconv.ParseFloat(v, 64); err == nil {
		return time.Duration(secs * float64(time.Second))
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}

// GetList splits the value for key on whitespace, preserving order.
// Returns nil when the key is absent or the value holds no fields.
func (s Settings) GetList(key string) []string {
	v, ok := s[key]
	if !ok {
		return nil
	}
	fields := strings.Fields(v)
	if len(fields) == 0 {
		return nil
	}
	return fields
}

// Without returns a copy of the settings with the given keys removed.
func (s Settings) Without(keys ...string) Settings {
	out := make(Settings, len(s))
	for k, v := range s {
		out[k] = v
	}
	for _, k := range keys {
		delete(out, k)
	}
	return out
}
