package feed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"github.com/spyzhov/ajson"
)

// errServerStatus marks a 5xx response as a failure for the circuit breaker
// while still handing the response back to the retry loop.
var errServerStatus = errors.New("server error status")

// getJSON sends a GET request and decodes the JSON body into an ajson tree.
// Retries are performed for 429 and 5xx responses using jittered backoff and
// honoring Retry-After when present. Every failure is a *TransportError.
func (c *Client) getJSON(ctx context.Context, path string, q url.Values, hdr http.Header) (*ajson.Node, error) {
	u := c.BaseURL + path
	if qs := q.Encode(); qs != "" {
		u += "?" + qs
	}
	reqID := uuid.NewString()
	log := c.log().WithField("req-id", reqID)

	var lastErr error
	backoff, maxBack := normalizeBackoff(c.InitialBackoff, c.MaxBackoff)
	retries := normalizeRetries(c.MaxRetries)

	attempt := 0
	for ; attempt <= retries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, &TransportError{Method: http.MethodGet, URL: u, Attempts: attempt, Err: err}
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("x-request-id", reqID)
		if c.UserAgent != "" {
			req.Header.Set("User-Agent", c.UserAgent)
		}
		mergeHeaders(req.Header, hdr)
		log.WithFields(logrus.Fields{
			"method": http.MethodGet, "url": u, "headers": redactHeaders(req.Header), "attempt": attempt,
		}).Debug("request")
		for _, h := range c.BeforeHooks {
			h(req)
		}

		res, err := c.send(req)
		var body []byte
		if res != nil {
			body, _ = io.ReadAll(res.Body)
			res.Body.Close()
		}
		log.WithFields(logrus.Fields{
			"method": http.MethodGet, "url": u, "status": statusOf(res), "attempt": attempt,
		}).Debug("response")
		for _, h := range c.AfterHooks {
			h(res, body, err)
		}

		switch {
		case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
			return nil, &TransportError{Method: http.MethodGet, URL: u, Attempts: attempt + 1, Err: err}
		case err != nil:
			lastErr = err
		case res.StatusCode/100 == 2:
			node, err := ajson.Unmarshal(body)
			if err != nil {
				return nil, &TransportError{Method: http.MethodGet, URL: u, Attempts: attempt + 1,
					Err: fmt.Errorf("decode response: %w", err)}
			}
			return node, nil
		default:
			apiErr := parseAPIError(res.StatusCode, body)
			if res.StatusCode != http.StatusTooManyRequests && res.StatusCode/100 != 5 {
				return nil, &TransportError{Method: http.MethodGet, URL: u, Attempts: attempt + 1, Err: apiErr}
			}
			lastErr = apiErr
			if ra := parseRetryAfter(res.Header.Get("Retry-After")); ra > 0 && ra > backoff {
				backoff = ra
			}
		}

		if ctx.Err() != nil {
			attempt++
			break
		}
		if attempt < retries {
			jitterSleep(ctx, backoff, maxBack)
			backoff = nextBackoff(backoff, maxBack)
		}
	}
	return nil, &TransportError{Method: http.MethodGet, URL: u, Attempts: attempt, Err: lastErr}
}

// send performs one attempt through the circuit breaker.
func (c *Client) send(req *http.Request) (*http.Response, error) {
	if c.breaker == nil {
		return c.HTTPClient.Do(req)
	}
	out, err := c.breaker.Execute(func() (interface{}, error) {
		res, err := c.HTTPClient.Do(req)
		if err != nil {
			return nil, err
		}
		if res.StatusCode/100 == 5 {
			return res, errServerStatus
		}
		return res, nil
	})
	res, _ := out.(*http.Response)
	if errors.Is(err, errServerStatus) {
		return res, nil
	}
	return res, err
}
