package logger

import (
	"encoding/json"
	"log/slog"
	"os"
	"strconv"
	"time"
)

// buildLogEntry wraps one log line in the Loki push payload shape.
func buildLogEntry(level, message string, attrs []slog.Attr) map[string]interface{} {
	job := os.Getenv("APP_NAME")
	if job == "" {
		job = "rocketshoes-cart"
	}

	now := time.Now()
	return map[string]interface{}{
		"streams": []map[string]interface{}{
			{
				"stream": map[string]string{
					"level": level,
					"job":   job,
				},
				"values": [][]string{
					{strconv.FormatInt(now.UnixNano(), 10), buildLogLine(now, level, message, attrs)},
				},
			},
		},
	}
}

func buildLogLine(now time.Time, level, message string, attrs []slog.Attr) string {
	line := make(map[string]interface{}, len(attrs)+3)
	for _, attr := range attrs {
		line[attr.Key] = attr.Value.Any()
	}
	line["level"] = level
	line["message"] = message
	line["time"] = now.Format(time.RFC3339)

	b, _ := json.Marshal(line)
	return string(b)
}
