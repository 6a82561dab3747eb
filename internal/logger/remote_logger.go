package logger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"
)

var remoteClient = &http.Client{Timeout: 5 * time.Second}

// sendLog ships the entry to REMOTE_LOG_HTTP_URI in the background. Failures
// only go to stderr so logging never blocks or fails a request.
func sendLog(level, message string, attrs []slog.Attr) {
	remoteURI := os.Getenv("REMOTE_LOG_HTTP_URI")
	if remoteURI == "" {
		return
	}

	go func() {
		payload, err := json.Marshal(buildLogEntry(level, message, attrs))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to marshal remote log entry: %v\n", err)
			return
		}

		req, err := http.NewRequest(http.MethodPost, remoteURI, bytes.NewReader(payload))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create remote log request: %v\n", err)
			return
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := remoteClient.Do(req)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to send remote log: %v\n", err)
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 400 {
			fmt.Fprintf(os.Stderr, "Remote log returned status %d\n", resp.StatusCode)
		}
	}()
}
