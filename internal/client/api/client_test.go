package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cybermorph/morphcli/internal/common"
	"github.com/cybermorph/morphcli/internal/logging"
)

type staticTokens string

func (s staticTokens) Token() string { return string(s) }

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func newTestClient(baseURL string, tokens TokenSource) *Client {
	return NewClient(Options{BaseURL: baseURL, Tokens: tokens, Logger: testLogger()})
}

func TestDo_AttachesBearerAndRequestID(t *testing.T) {
	var gotAuth, gotRequestID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("X-Request-Id")
		_, _ = w.Write([]byte(`{}`))
	}))
	t.Cleanup(srv.Close)

	c := newTestClient(srv.URL, staticTokens("tok123"))
	_, err := c.Do(context.Background(), http.MethodGet, "/user/my-stats", nil)
	require.NoError(t, err)

	assert.Equal(t, "Bearer tok123", gotAuth)
	assert.NotEmpty(t, gotRequestID)
}

func TestDo_OmitsBearerWhenTokenAbsent(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{}`))
	}))
	t.Cleanup(srv.Close)

	// The session manager returns "" once the token expires; no header may
	// be sent in that case.
	c := newTestClient(srv.URL, staticTokens(""))
	_, err := c.Do(context.Background(), http.MethodGet, "/user/my-stats", nil)
	require.NoError(t, err)

	assert.Empty(t, gotAuth)
}

func TestDo_JSONBody(t *testing.T) {
	var gotContentType string
	var gotBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_, _ = w.Write([]byte(`{}`))
	}))
	t.Cleanup(srv.Close)

	c := newTestClient(srv.URL, nil)
	_, err := c.Do(context.Background(), http.MethodPost, "/auth/login",
		map[string]string{"username": "alice", "password": "pw"})
	require.NoError(t, err)

	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, "alice", gotBody["username"])
}

func TestDo_MultipartBodyKeepsWriterBoundary(t *testing.T) {
	var gotContentType string
	var gotFilename string
	var gotContent []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		file, header, err := r.FormFile("file")
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer file.Close()
		gotFilename = header.Filename
		gotContent, _ = io.ReadAll(file)
		_, _ = w.Write([]byte(`{}`))
	}))
	t.Cleanup(srv.Close)

	c := newTestClient(srv.URL, nil)
	_, err := c.Do(context.Background(), http.MethodPost, PathScanUpload,
		&Multipart{FieldName: "file", Filename: "sample.exe", Content: []byte{0x4d, 0x5a}})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(gotContentType, "multipart/form-data; boundary="))
	assert.Equal(t, "sample.exe", gotFilename)
	assert.Equal(t, []byte{0x4d, 0x5a}, gotContent)
}

func TestDo_ServerDetailPreferredInErrorMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"detail":"file too large"}`))
	}))
	t.Cleanup(srv.Close)

	c := newTestClient(srv.URL, nil)
	_, err := c.Do(context.Background(), http.MethodPost, PathScanUpload, nil)

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "file too large", apiErr.Message)
	assert.JSONEq(t, `{"detail":"file too large"}`, string(apiErr.RawBody))
}

func TestDo_StatusTextFallbackWhenBodyUnstructured(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`boom`))
	}))
	t.Cleanup(srv.Close)

	c := newTestClient(srv.URL, nil)
	_, err := c.Do(context.Background(), http.MethodGet, "/admin/stats", nil)

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.Equal(t, "Internal Server Error", apiErr.Message)
}

func TestDo_ConnectionFailureIsStatusZero(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing is listening anymore

	c := newTestClient(srv.URL, nil)
	_, err := c.Do(context.Background(), http.MethodGet, "/user/my-stats", nil)

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 0, apiErr.StatusCode)
	assert.Equal(t, "network unavailable", apiErr.Message)
	assert.True(t, errors.Is(err, common.ErrUnavailable))
}

func TestError_SentinelMapping(t *testing.T) {
	assert.True(t, errors.Is(&Error{StatusCode: http.StatusUnauthorized}, common.ErrUnauthorized))
	assert.True(t, errors.Is(&Error{StatusCode: http.StatusForbidden}, common.ErrUnauthorized))
	assert.True(t, errors.Is(&Error{StatusCode: http.StatusNotFound}, common.ErrNotFound))
	assert.False(t, errors.Is(&Error{StatusCode: http.StatusBadRequest}, common.ErrUnauthorized))
}

func TestIsStatus(t *testing.T) {
	assert.True(t, IsStatus(&Error{StatusCode: 404}, 404))
	assert.False(t, IsStatus(&Error{StatusCode: 500}, 404))
	assert.False(t, IsStatus(errors.New("plain"), 404))
	assert.False(t, IsStatus(nil, 404))
}
