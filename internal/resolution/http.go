package resolution

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"golang.org/x/time/rate"

	"github.com/agenthands/edgeqc/internal/logger"
)

const maxErrorBody = 512

// HTTPClient talks to the SRI node normalizer and name resolver.
type HTTPClient struct {
	normalizerURL   string
	nameResolverURL string
	lookupLimit     int

	http       *http.Client
	limiter    *rate.Limiter
	maxRetries int
	newBackOff func() backoff.BackOff
	log        *logger.Logger
}

type Option func(*HTTPClient)

func WithHTTPClient(c *http.Client) Option {
	return func(h *HTTPClient) { h.http = c }
}

func WithBackOff(f func() backoff.BackOff) Option {
	return func(h *HTTPClient) { h.newBackOff = f }
}

func WithRateLimit(rps float64, burst int) Option {
	return func(h *HTTPClient) { h.limiter = newLimiter(rps, burst) }
}

func WithMaxRetries(n int) Option {
	return func(h *HTTPClient) { h.maxRetries = n }
}

func WithLookupLimit(n int) Option {
	return func(h *HTTPClient) { h.lookupLimit = n }
}

func WithLogger(l *logger.Logger) Option {
	return func(h *HTTPClient) { h.log = l }
}

func NewHTTPClient(normalizerURL, nameResolverURL string, opts ...Option) *HTTPClient {
	c := &HTTPClient{
		normalizerURL:   strings.TrimRight(normalizerURL, "/"),
		nameResolverURL: strings.TrimRight(nameResolverURL, "/"),
		lookupLimit:     10,
		http:            &http.Client{Timeout: 30 * time.Second},
		limiter:         rate.NewLimiter(rate.Inf, 1),
		maxRetries:      3,
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 500 * time.Millisecond
			b.MaxInterval = 10 * time.Second
			return b
		},
		log: logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type normalizeRequest struct {
	CURIEs []string `json:"curies"`
	NormalizeOptions
}

func (c *HTTPClient) Normalize(ctx context.Context, curies []string, opts NormalizeOptions) (map[string]NormalizedNode, error) {
	if len(curies) == 0 {
		return map[string]NormalizedNode{}, nil
	}

	var raw map[string]*NormalizedNode
	payload := normalizeRequest{CURIEs: curies, NormalizeOptions: opts}
	if err := c.postJSON(ctx, "normalize", c.normalizerURL+"/get_normalized_nodes", payload, &raw); err != nil {
		return nil, err
	}

	// null entries mean the normalizer does not know the CURIE
	out := make(map[string]NormalizedNode, len(raw))
	for curie, node := range raw {
		if node == nil || node.ID.Identifier == "" {
			continue
		}
		out[curie] = *node
	}
	return out, nil
}

type synonymsRequest struct {
	PreferredCURIEs []string `json:"preferred_curies"`
}

func (c *HTTPClient) Synonyms(ctx context.Context, curies []string) (map[string]SynonymEntry, error) {
	if len(curies) == 0 {
		return map[string]SynonymEntry{}, nil
	}

	var raw map[string]*SynonymEntry
	if err := c.postJSON(ctx, "synonyms", c.nameResolverURL+"/synonyms", synonymsRequest{PreferredCURIEs: curies}, &raw); err != nil {
		return nil, err
	}

	out := make(map[string]SynonymEntry, len(raw))
	for curie, entry := range raw {
		if entry == nil {
			continue
		}
		out[curie] = *entry
	}
	return out, nil
}

func (c *HTTPClient) Lookup(ctx context.Context, text, typeFilter string) ([]LookupResult, error) {
	params := url.Values{}
	params.Set("string", text)
	params.Set("autocomplete", "false")
	params.Set("highlighting", "false")
	params.Set("offset", "0")
	params.Set("limit", strconv.Itoa(c.lookupLimit))
	if typeFilter != "" {
		params.Set("biolink_type", typeFilter)
	}

	var results []LookupResult
	if err := c.getJSON(ctx, "lookup", c.nameResolverURL+"/lookup?"+params.Encode(), &results); err != nil {
		return nil, err
	}
	return results, nil
}

type bulkLookupRequest struct {
	Strings      []string `json:"strings"`
	Autocomplete bool     `json:"autocomplete"`
	Highlighting bool     `json:"highlighting"`
	Offset       int      `json:"offset"`
	Limit        int      `json:"limit"`
	BiolinkTypes []string `json:"biolink_types,omitempty"`
}

func (c *HTTPClient) BulkLookup(ctx context.Context, texts []string, typeFilter string) (map[string][]LookupResult, error) {
	if len(texts) == 0 {
		return map[string][]LookupResult{}, nil
	}

	payload := bulkLookupRequest{
		Strings: texts,
		Limit:   c.lookupLimit,
	}
	if typeFilter != "" {
		payload.BiolinkTypes = []string{typeFilter}
	}

	var results map[string][]LookupResult
	if err := c.postJSON(ctx, "bulk_lookup", c.nameResolverURL+"/bulk-lookup", payload, &results); err != nil {
		return nil, err
	}
	if results == nil {
		results = map[string][]LookupResult{}
	}
	return results, nil
}

func (c *HTTPClient) postJSON(ctx context.Context, op, endpoint string, payload, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return &ServiceError{Op: op, Err: fmt.Errorf("failed to encode request: %w", err)}
	}
	return c.do(ctx, op, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		return req, nil
	}, out)
}

func (c *HTTPClient) getJSON(ctx context.Context, op, endpoint string, out interface{}) error {
	return c.do(ctx, op, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		return req, nil
	}, out)
}

// do sends the request with retries. Transport errors, 429 and 5xx are
// retried; other non-2xx statuses and undecodable bodies fail immediately.
func (c *HTTPClient) do(ctx context.Context, op string, build func() (*http.Request, error), out interface{}) error {
	tries := uint(1)
	if c.maxRetries > 0 {
		tries += uint(c.maxRetries)
	}
	attempt := 0
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		attempt++
		if err := c.limiter.Wait(ctx); err != nil {
			return struct{}{}, backoff.Permanent(&ServiceError{Op: op, Err: err})
		}

		req, err := build()
		if err != nil {
			return struct{}{}, backoff.Permanent(&ServiceError{Op: op, Err: err})
		}

		resp, err := c.http.Do(req)
		if err != nil {
			c.log.Warn("resolution request failed", "op", op, "attempt", attempt, "error", err)
			return struct{}{}, &ServiceError{Op: op, Err: err}
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
			se := &ServiceError{Op: op, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
			if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
				c.log.Warn("resolution service returned retryable status", "op", op, "attempt", attempt, "status", resp.StatusCode)
				return struct{}{}, se
			}
			return struct{}{}, backoff.Permanent(se)
		}

		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return struct{}{}, backoff.Permanent(&ServiceError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("malformed response: %w", err)})
		}
		return struct{}{}, nil
	}, backoff.WithBackOff(c.newBackOff()), backoff.WithMaxTries(tries))

	if err == nil {
		return nil
	}
	var se *ServiceError
	if errors.As(err, &se) {
		return se
	}
	return &ServiceError{Op: op, Err: err}
}

func newLimiter(rps float64, burst int) *rate.Limiter {
	if burst < 1 {
		burst = 1
	}
	if rps <= 0 {
		return rate.NewLimiter(rate.Inf, burst)
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}
