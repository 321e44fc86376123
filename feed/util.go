package feed

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand/v2"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// sensitiveHeaders are masked before request metadata reaches a logger.
var sensitiveHeaders = []string{"Authorization", "x-guest-token"}

// authHeaders builds the authentication headers from the Client configuration.
func (c *Client) authHeaders() http.Header {
	h := http.Header{}
	if c.BearerToken != "" {
		h.Set("Authorization", "Bearer "+c.BearerToken)
	}
	if c.GuestToken != "" {
		h.Set("x-guest-token", c.GuestToken)
	}
	return h
}

// mergeHeaders appends values from src into dst.
func mergeHeaders(dst http.Header, src http.Header) {
	if src == nil {
		return
	}
	for k, vs := range src {
		for _, v := range vs {
			dst.Add(k, v)
		}
	}
}

// statusOf returns the HTTP status code or zero if the response is nil.
func statusOf(res *http.Response) int {
	if res == nil {
		return 0
	}
	return res.StatusCode
}

// parseAPIError decodes an error body and captures message/code when available.
func parseAPIError(code int, b []byte) *APIError {
	apiErr := &APIError{StatusCode: code, Body: string(b)}
	var msg struct {
		Message string `json:"message"`
		Error   string `json:"error"`
		Code    any    `json:"code"`
		Errors  []struct {
			Message string `json:"message"`
			Code    any    `json:"code"`
		} `json:"errors"`
	}
	if json.Unmarshal(b, &msg) != nil {
		return apiErr
	}
	switch {
	case msg.Message != "":
		apiErr.Message = msg.Message
	case msg.Error != "":
		apiErr.Message = msg.Error
	case len(msg.Errors) > 0:
		apiErr.Message = msg.Errors[0].Message
		if msg.Code == nil {
			msg.Code = msg.Errors[0].Code
		}
	}
	switch v := msg.Code.(type) {
	case string:
		apiErr.Code = v
	case float64:
		apiErr.Code = strconv.FormatFloat(v, 'f', -1, 64)
	}
	return apiErr
}

// parseRetryAfter interprets Retry-After header values (seconds or HTTP-date).
func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// redactHeaders masks sensitive header values for logging.
func redactHeaders(h http.Header) http.Header {
	if h == nil {
		return h
	}
	cp := http.Header{}
	for k, vs := range h {
		for _, v := range vs {
			if isSensitive(k) {
				cp.Add(k, redact(v))
			} else {
				cp.Add(k, v)
			}
		}
	}
	return cp
}

func isSensitive(key string) bool {
	for _, s := range sensitiveHeaders {
		if strings.EqualFold(key, s) {
			return true
		}
	}
	return false
}

func redact(v string) string {
	if len(v) > 12 {
		return v[:4] + "..." + v[len(v)-4:]
	}
	return "********"
}

// normalizeBackoff ensures sane defaults for backoff windows.
func normalizeBackoff(initial, max time.Duration) (time.Duration, time.Duration) {
	if initial <= 0 {
		initial = 200 * time.Millisecond
	}
	if max <= 0 {
		max = 2 * time.Second
	}
	return initial, max
}

// normalizeRetries ensures non-negative retry counts.
func normalizeRetries(r int) int {
	if r < 0 {
		return 0
	}
	return r
}

// jitterSleep sleeps for a randomized duration based on the current backoff.
// Context cancellation is respected.
func jitterSleep(ctx context.Context, backoff, maxBack time.Duration) {
	jitter := time.Duration(float64(backoff) * (0.5 + 0.5*rand.Float64()))
	if jitter > maxBack {
		jitter = maxBack
	}
	_ = sleepContext(ctx, jitter)
}

// nextBackoff doubles backoff up to maxBack.
func nextBackoff(backoff, maxBack time.Duration) time.Duration {
	backoff *= 2
	if backoff > maxBack {
		backoff = maxBack
	}
	return backoff
}

// sleepContext blocks for d or until ctx is done, whichever comes first.
// A non-positive d returns immediately.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// isDigits reports whether s is a non-empty run of ASCII digits.
func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// notFoundOn404 turns a 404 response into a *NotFoundError for subject.
// Other errors pass through unchanged.
func notFoundOn404(err error, subject string) error {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
		return &NotFoundError{Subject: subject, Reason: apiErr.Error()}
	}
	return err
}
