package mockserver

import "time"

// DefaultResource is the collection path served when Config.Resource is empty
const DefaultResource = "crud"

// LogsPath serves the request log as JSON (GET) and clears it (DELETE)
const LogsPath = "/_logs"

// maxLogs caps the in-memory request log
const maxLogs = 1000

// Config represents the mock server configuration
type Config struct {
	Addr     string        // Listen address (default: localhost:8080)
	Resource string        // Collection path (default: crud)
	Delay    time.Duration // Added to every response to simulate latency
	Logging  bool          // Keep a request log and write it to the logger
}

// RequestLog represents a logged request
type RequestLog struct {
	Timestamp time.Time     `json:"timestamp"`
	Method    string        `json:"method"`
	Path      string        `json:"path"`
	Body      string        `json:"body"`
	Status    int           `json:"status"`
	Duration  time.Duration `json:"duration"`
}

// errorResponse is the JSON body of every non-2xx answer
type errorResponse struct {
	Status string `json:"status"`
	Error  string `json:"error"`
}
