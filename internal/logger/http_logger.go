package logger

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// MaxBodyLogged caps how much of a body is captured for logging (1 MiB).
const MaxBodyLogged = 1 << 20

const maxBinarySample = 256

var allowedHeaders = map[string]bool{
	"content-type":   true,
	"user-agent":     true,
	"content-length": true,
	"x-trace-id":     true,
	"traceparent":    true,
	"authorization":  true,
	"set-cookie":     true,
	"cookie":         true,
}

var redactedHeaders = map[string]bool{
	"authorization": true,
	"set-cookie":    true,
	"cookie":        true,
}

// CaptureBody reads up to MaxBodyLogged bytes of r.Body for logging. The
// captured prefix is stitched back in front of the unread remainder, so
// handlers still see the full payload and closing reaches the original body.
func CaptureBody(r *http.Request) ([]byte, error) {
	if r.Body == nil || r.Body == http.NoBody {
		return nil, nil
	}
	orig := r.Body
	body, err := io.ReadAll(io.LimitReader(orig, MaxBodyLogged))
	r.Body = struct {
		io.Reader
		io.Closer
	}{io.MultiReader(bytes.NewReader(body), orig), orig}
	if err != nil {
		return nil, err
	}
	return body, nil
}

func HeaderAttrs(hdr http.Header) []slog.Attr {
	attrs := make([]slog.Attr, 0, len(hdr))
	for name, values := range hdr {
		lower := strings.ToLower(name)
		if !allowedHeaders[lower] {
			continue
		}
		v := strings.Join(values, ", ")
		if redactedHeaders[lower] {
			v = "***"
		}
		attrs = append(attrs, slog.String("http.header."+lower, v))
	}
	return attrs
}

func QueryAttrs(q url.Values) []slog.Attr {
	attrs := make([]slog.Attr, 0, len(q))
	for key, values := range q {
		if len(values) == 0 {
			continue
		}
		attrs = append(attrs, slog.String("http.query."+key, strings.Join(values, ",")))
	}
	return attrs
}

// DecodeBody turns a body into attributes according to its content type.
func DecodeBody(contentType string, body []byte) ([]slog.Attr, error) {
	if len(body) == 0 {
		return nil, nil
	}

	ct, _, _ := mime.ParseMediaType(contentType)
	switch ct {
	case "application/json":
		return jsonAttrs(body), nil
	case "application/x-www-form-urlencoded":
		return formAttrs(body)
	default:
		return binaryAttrs(body), nil
	}
}

func jsonAttrs(b []byte) []slog.Attr {
	var data any
	if err := json.Unmarshal(b, &data); err != nil {
		return []slog.Attr{slog.String("http.body", string(b))}
	}
	attrs := make([]slog.Attr, 0, 8)
	flattenJSON("http.body", data, &attrs)
	return attrs
}

// flattenJSON walks decoded JSON. Arrays only keep their first and last
// element, which is enough to recognise a cart payload without flooding logs.
func flattenJSON(prefix string, v any, dst *[]slog.Attr) {
	switch t := v.(type) {
	case map[string]any:
		for k, child := range t {
			flattenJSON(prefix+"."+k, child, dst)
		}
	case []any:
		if len(t) == 0 {
			return
		}
		flattenJSON(prefix+".0", t[0], dst)
		if last := len(t) - 1; last > 0 {
			flattenJSON(prefix+"."+strconv.Itoa(last), t[last], dst)
		}
		*dst = append(*dst, slog.Int(prefix+".len", len(t)))
	case string:
		*dst = append(*dst, slog.String(prefix, redactIfNeeded(t)))
	case float64:
		*dst = append(*dst, slog.Float64(prefix, t))
	case bool:
		*dst = append(*dst, slog.Bool(prefix, t))
	case nil:
	default:
		*dst = append(*dst, slog.String(prefix, fmt.Sprintf("%v", t)))
	}
}

func formAttrs(b []byte) ([]slog.Attr, error) {
	vals, err := url.ParseQuery(string(b))
	if err != nil {
		return nil, err
	}
	attrs := make([]slog.Attr, 0, len(vals))
	for k, v := range vals {
		attrs = append(attrs, slog.String("http.body."+k, redactIfNeeded(strings.Join(v, ", "))))
	}
	return attrs, nil
}

func binaryAttrs(b []byte) []slog.Attr {
	if len(b) <= maxBinarySample {
		return []slog.Attr{slog.String("http.body.base64", base64.StdEncoding.EncodeToString(b))}
	}
	return []slog.Attr{
		slog.Int("http.body.size_bytes", len(b)),
		slog.String("http.body.sample_base64", base64.StdEncoding.EncodeToString(b[:maxBinarySample])),
	}
}

func redactIfNeeded(s string) string {
	lower := strings.ToLower(s)
	if strings.Contains(lower, "password") || strings.Contains(lower, "token") {
		return "***"
	}
	return s
}

func requestAttrs(r *http.Request, direction string) []slog.Attr {
	return []slog.Attr{
		slog.String("http.direction", direction),
		slog.String("http.remote_addr", r.RemoteAddr),
		slog.String("http.method", r.Method),
		slog.String("http.path", r.URL.Path),
	}
}

// LogHTTPRequest builds attributes for a request, including its body.
func LogHTTPRequest(ctx context.Context, r *http.Request, direction string) []slog.Attr {
	attrs := requestAttrs(r, direction)
	attrs = append(attrs, HeaderAttrs(r.Header)...)
	attrs = append(attrs, QueryAttrs(r.URL.Query())...)

	body, err := CaptureBody(r)
	if err != nil || len(body) == 0 {
		return attrs
	}
	bodyAttrs, err := DecodeBody(r.Header.Get("Content-Type"), body)
	if err != nil {
		return append(attrs, slog.String("http.body.error", err.Error()))
	}
	return append(attrs, bodyAttrs...)
}

// LogHTTPResponse builds attributes for a response whose body was buffered by
// the caller.
func LogHTTPResponse(ctx context.Context, req *http.Request, header http.Header, status int, body io.Reader, durationMs int64, direction string) []slog.Attr {
	attrs := requestAttrs(req, direction)
	attrs = append(attrs,
		slog.Int("http.status", status),
		slog.Int64("duration_ms", durationMs),
	)
	attrs = append(attrs, HeaderAttrs(header)...)

	if body == nil {
		return attrs
	}
	buf := new(bytes.Buffer)
	if _, err := io.Copy(buf, body); err != nil || buf.Len() == 0 {
		return attrs
	}
	bodyAttrs, err := DecodeBody(header.Get("Content-Type"), buf.Bytes())
	if err != nil {
		return append(attrs, slog.String("http.body.error", err.Error()))
	}
	return append(attrs, bodyAttrs...)
}
