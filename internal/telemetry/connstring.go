package telemetry

import (
	"fmt"
	"net/url"
	"strings"
)

// StdoutConnectionString selects the pretty-printing stdout exporter
const StdoutConnectionString = "stdout"

// ConnectionString is the parsed form of an Application Insights style
// "Key=Value;Key=Value" string
type ConnectionString struct {
	Stdout             bool
	InstrumentationKey string
	IngestionEndpoint  *url.URL
}

// ParseConnectionString parses "stdout" or a string carrying at least an
// IngestionEndpoint. Keys are case-insensitive; unknown keys are ignored.
func ParseConnectionString(raw string) (ConnectionString, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ConnectionString{}, fmt.Errorf("connection string is empty")
	}
	if strings.EqualFold(raw, StdoutConnectionString) {
		return ConnectionString{Stdout: true}, nil
	}

	var cs ConnectionString
	for _, part := range strings.Split(raw, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 {
			return ConnectionString{}, fmt.Errorf("malformed connection string segment %q", part)
		}
		key, value := strings.TrimSpace(kv[0]), strings.TrimSpace(kv[1])

		switch strings.ToLower(key) {
		case "instrumentationkey":
			cs.InstrumentationKey = value
		case "ingestionendpoint":
			u, err := url.Parse(value)
			if err != nil {
				return ConnectionString{}, fmt.Errorf("invalid IngestionEndpoint: %w", err)
			}
			if u.Scheme != "http" && u.Scheme != "https" {
				return ConnectionString{}, fmt.Errorf("IngestionEndpoint must be an http(s) URL, got %q", value)
			}
			if u.Host == "" {
				return ConnectionString{}, fmt.Errorf("IngestionEndpoint has no host: %q", value)
			}
			cs.IngestionEndpoint = u
		}
	}

	if cs.IngestionEndpoint == nil {
		return ConnectionString{}, fmt.Errorf("connection string has no IngestionEndpoint")
	}
	return cs, nil
}

// Headers returns the HTTP headers sent with every export
func (cs ConnectionString) Headers() map[string]string {
	if cs.InstrumentationKey == "" {
		return nil
	}
	return map[string]string{"x-instrumentation-key": cs.InstrumentationKey}
}
