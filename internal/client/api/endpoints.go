package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/cybermorph/morphcli/internal/client/models"
)

// Upload endpoints. The legacy path is only tried after the primary answers
// 404; older backend deployments never migrated off it.
const (
	PathScanUpload       = "/file_scan/upload"
	PathScanUploadLegacy = "/scan/upload"
)

const (
	pathLogin       = "/auth/login"
	pathRegister    = "/auth/register"
	pathMyStats     = "/user/my-stats"
	pathAdminUsers  = "/admin/users"
	pathAdminScans  = "/admin/scans"
	pathAdminStats  = "/admin/stats"
	pathAdminAlerts = "/admin/alerts"
)

// Backend is the call surface consumed by services and the scan workflow.
// Tests substitute fakes.
type Backend interface {
	Login(ctx context.Context, username, password string) (*models.TokenResponse, error)
	Register(ctx context.Context, username, email, password string) (*models.User, error)
	Upload(ctx context.Context, path, filename string, content []byte) (*models.ScanResponse, error)
	MyStats(ctx context.Context) (*models.Stats, error)
	AdminUsers(ctx context.Context) ([]models.User, error)
	AdminScans(ctx context.Context) ([]models.ScanResponse, error)
	AdminStats(ctx context.Context) (*models.Stats, error)
	AdminAlerts(ctx context.Context) ([]json.RawMessage, error)
}

var _ Backend = (*Client)(nil)

// Login authenticates and returns the issued credential token alongside the
// account's id and role.
func (c *Client) Login(ctx context.Context, username, password string) (*models.TokenResponse, error) {
	body := map[string]string{"username": username, "password": password}
	out := &models.TokenResponse{}
	if err := c.doJSON(ctx, http.MethodPost, pathLogin, body, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Register creates a new account.
func (c *Client) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	body := map[string]string{"username": username, "email": email, "password": password}
	out := &models.User{}
	if err := c.doJSON(ctx, http.MethodPost, pathRegister, body, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Upload submits file content for scanning against the given endpoint path.
// Endpoint selection (primary vs legacy) belongs to the scan workflow.
func (c *Client) Upload(ctx context.Context, path, filename string, content []byte) (*models.ScanResponse, error) {
	payload := &Multipart{FieldName: "file", Filename: filename, Content: content}
	out := &models.ScanResponse{}
	if err := c.doJSON(ctx, http.MethodPost, path, payload, out); err != nil {
		return nil, err
	}
	return out, nil
}

// MyStats returns the authenticated user's scan statistics.
func (c *Client) MyStats(ctx context.Context) (*models.Stats, error) {
	out := &models.Stats{}
	if err := c.doJSON(ctx, http.MethodGet, pathMyStats, nil, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) AdminUsers(ctx context.Context) ([]models.User, error) {
	var out []models.User
	if err := c.doJSON(ctx, http.MethodGet, pathAdminUsers, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) AdminScans(ctx context.Context) ([]models.ScanResponse, error) {
	var out []models.ScanResponse
	if err := c.doJSON(ctx, http.MethodGet, pathAdminScans, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) AdminStats(ctx context.Context) (*models.Stats, error) {
	out := &models.Stats{}
	if err := c.doJSON(ctx, http.MethodGet, pathAdminStats, nil, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) AdminAlerts(ctx context.Context) ([]json.RawMessage, error) {
	var out []json.RawMessage
	if err := c.doJSON(ctx, http.MethodGet, pathAdminAlerts, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
