// Package api is the HTTP transport layer for the CyberMorph backend. All
// requests go through a single function that attaches bearer credentials,
// negotiates JSON vs multipart bodies, and normalizes every failure into one
// Error shape.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/cybermorph/morphcli/internal/common"
	"github.com/cybermorph/morphcli/internal/logging"
)

// TokenSource supplies the bearer token for outbound requests. An empty
// string means no Authorization header is sent; the session manager returns
// "" for absent, malformed, or expired tokens.
type TokenSource interface {
	Token() string
}

// Multipart wraps a file payload for upload. The multipart boundary is owned
// by the writer that encodes it; no Content-Type is forced by callers.
type Multipart struct {
	FieldName string
	Filename  string
	Content   []byte
}

// Options configures a Client.
type Options struct {
	// BaseURL is the backend root, e.g. "http://127.0.0.1:8000/api".
	BaseURL string

	// Timeout applies to every request. Zero means no timeout.
	Timeout time.Duration

	// MaxRPS caps outbound requests per second (0 = unlimited).
	MaxRPS float64

	// Tokens supplies bearer credentials. May be nil for a client that only
	// performs unauthenticated calls.
	Tokens TokenSource

	Logger logging.Logger
}

// Client is the concrete transport, backed by net/http.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	tokens     TokenSource
	log        logging.Logger
}

func NewClient(opts Options) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		httpClient: &http.Client{Timeout: opts.Timeout},
		tokens:     opts.Tokens,
		log:        opts.Logger,
	}
	if opts.MaxRPS > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(opts.MaxRPS), 1)
	}
	return c
}

// Do sends one request and returns the raw response body on success.
//
// body handling:
//   - nil: no request body.
//   - *Multipart: encoded as multipart/form-data; the writer supplies the
//     Content-Type including its boundary.
//   - anything else: JSON-serialized with Content-Type application/json.
//
// Every failure comes back as *Error: non-2xx responses carry the server's
// status and message, transport-level failures carry StatusCode 0.
func (c *Client) Do(ctx context.Context, method, path string, body any) (json.RawMessage, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	var bodyReader io.Reader
	contentType := ""

	switch payload := body.(type) {
	case nil:
	case *Multipart:
		buf := &bytes.Buffer{}
		writer := multipart.NewWriter(buf)
		part, err := writer.CreateFormFile(payload.FieldName, payload.Filename)
		if err != nil {
			return nil, fmt.Errorf("encoding multipart body: %w", err)
		}
		if _, err := part.Write(payload.Content); err != nil {
			return nil, fmt.Errorf("encoding multipart body: %w", err)
		}
		if err := writer.Close(); err != nil {
			return nil, fmt.Errorf("encoding multipart body: %w", err)
		}
		bodyReader = buf
		contentType = writer.FormDataContentType()
	default:
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
		bodyReader = bytes.NewReader(encoded)
		contentType = "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set(common.RequestIDHeaderName, uuid.NewString())
	if c.tokens != nil {
		if tok := c.tokens.Token(); tok != "" {
			req.Header.Set(common.AuthorizationHeaderName, "Bearer "+tok)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn(ctx, "request failed before reaching the server",
			"method", method, "path", path, "error", err)
		return nil, newNetworkError()
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		c.log.Warn(ctx, "failed to read response body",
			"method", method, "path", path, "error", err)
		return nil, newNetworkError()
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := newStatusError(resp.StatusCode, raw)
		c.log.Debug(ctx, "request rejected",
			"method", method, "path", path, "status", resp.StatusCode, "message", apiErr.Message)
		return nil, apiErr
	}

	return raw, nil
}

// doJSON runs Do and unmarshals the response into out.
func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	raw, err := c.Do(ctx, method, path, body)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decoding %s response: %w", path, err)
	}
	return nil
}
