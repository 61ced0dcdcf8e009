// Package testutil provides shared test helpers for config files and fake event sources.
package testutil

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

// SampleDocument is a source document with one invalid event and one event
// whose venue is missing.
const SampleDocument = `{
	"events": [
		{"id": 1, "name": "Concert", "description": "Rock show", "startDate": "2024-12-03T19:00:00Z", "venueId": 1},
		{"id": 0, "name": "Broken", "startDate": "2024-12-03T19:00:00Z", "venueId": 1},
		{"id": 2, "name": "Play", "startDate": "2024-12-01T19:00:00Z", "venueId": 2}
	],
	"venues": [
		{"id": 1, "name": "Opera House", "capacity": 5000, "location": "Sydney"}
	]
}`

// SourceServer is a fake event source that counts its requests.
type SourceServer struct {
	*httptest.Server
	requests atomic.Int32
}

// Requests returns how many requests the server has received.
func (s *SourceServer) Requests() int {
	return int(s.requests.Load())
}

// NewSourceServer serves body with status for every request. The server is
// closed when the test ends.
func NewSourceServer(t *testing.T, status int, body string) *SourceServer {
	t.Helper()

	s := &SourceServer{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.requests.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(s.Close)
	return s
}

// SetupTestConfig writes a config file in tmpDir that points at sourceURL
// with short retry delays. Returns the path to the generated config file.
func SetupTestConfig(t *testing.T, tmpDir string, sourceURL string) string {
	t.Helper()

	configContent := fmt.Sprintf(`source:
  url: %s
  timeout: 2s
  retry:
    attempts: 3
    delays: [10ms, 20ms]
cache:
  ttl: 1m
server:
  port: 8080
`, sourceURL)

	configPath := filepath.Join(tmpDir, "config.yml")
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0644))
	return configPath
}
