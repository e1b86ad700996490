package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cybermorph/morphcli/internal/client/models"
	"github.com/cybermorph/morphcli/internal/common"
)

// fakeStats implements services.StatsService.
type fakeStats struct {
	mine     *models.Stats
	overview *models.Stats
	users    []models.User
	scans    []models.ScanResponse
	alerts   []json.RawMessage
	err      error
}

func (f *fakeStats) MyStats(ctx context.Context) (*models.Stats, error)  { return f.mine, f.err }
func (f *fakeStats) Overview(ctx context.Context) (*models.Stats, error) { return f.overview, f.err }
func (f *fakeStats) Users(ctx context.Context) ([]models.User, error)    { return f.users, f.err }
func (f *fakeStats) Scans(ctx context.Context) ([]models.ScanResponse, error) {
	return f.scans, f.err
}
func (f *fakeStats) Alerts(ctx context.Context) ([]json.RawMessage, error) {
	return f.alerts, f.err
}

func loginAs(t *testing.T, app *App, role string) {
	t.Helper()
	stubInput(t, []string{"u"}, "pw", false)
	auth := app.auth.(*fakeAuth)
	auth.loginTok = signTestToken(t, "u", role)
	require.NoError(t, app.Login(context.Background()))
}

func TestStats_PlainUserSeesOwnNumbers(t *testing.T) {
	app, out := newTestApp(t, &fakeAuth{})
	app.stats = &fakeStats{mine: &models.Stats{TotalScans: 4, Threats: 1}}
	loginAs(t, app, "user")
	out.Reset()

	require.NoError(t, app.Stats(context.Background()))
	assert.Contains(t, out.String(), "Your scans: 4, threats found: 1")
}

func TestStats_AdminSeesOverview(t *testing.T) {
	total := int64(12)
	app, out := newTestApp(t, &fakeAuth{})
	app.stats = &fakeStats{overview: &models.Stats{TotalScans: 100, Threats: 9, TotalUsers: &total}}
	loginAs(t, app, "admin")
	out.Reset()

	require.NoError(t, app.Stats(context.Background()))
	assert.Contains(t, out.String(), "Total scans: 100, threats: 9, users: 12")
}

func TestUsers_AdminListing(t *testing.T) {
	app, out := newTestApp(t, &fakeAuth{})
	app.stats = &fakeStats{users: []models.User{
		{ID: 1, Username: "root", Email: "r@example.com", Role: "admin"},
		{ID: 2, Username: "alice", Email: "a@example.com", Role: "user"},
	}}

	require.NoError(t, app.Users(context.Background()))
	assert.Contains(t, out.String(), "root")
	assert.Contains(t, out.String(), "alice")
}

func TestScans_ShowsDashForMissingScore(t *testing.T) {
	score := 0.92
	app, out := newTestApp(t, &fakeAuth{})
	app.stats = &fakeStats{scans: []models.ScanResponse{
		{ID: 5, Filename: "a.exe", Verdict: "malicious", Score: &score},
		{ID: 6, Filename: "b.bin", Verdict: "unknown"},
	}}

	require.NoError(t, app.Scans(context.Background()))
	assert.Contains(t, out.String(), "0.92")
	assert.Contains(t, out.String(), "-")
}

func TestAlerts_EmptyAndPopulated(t *testing.T) {
	app, out := newTestApp(t, &fakeAuth{})
	app.stats = &fakeStats{}

	require.NoError(t, app.Alerts(context.Background()))
	assert.Contains(t, out.String(), "No alerts")

	out.Reset()
	app.stats = &fakeStats{alerts: []json.RawMessage{json.RawMessage(`{"kind":"spike"}`)}}
	require.NoError(t, app.Alerts(context.Background()))
	assert.Contains(t, out.String(), `{"kind":"spike"}`)
}

func TestReportError_TranslatesSentinels(t *testing.T) {
	app, out := newTestApp(t, &fakeAuth{})
	app.stats = &fakeStats{err: fmt.Errorf("admin role required: %w", common.ErrUnauthorized)}

	err := app.Users(context.Background())
	require.Error(t, err)
	assert.Contains(t, out.String(), "requires the admin role")

	out.Reset()
	app.stats = &fakeStats{err: fmt.Errorf("request: %w", common.ErrUnavailable)}
	err = app.Stats(context.Background())
	require.Error(t, err)
	assert.Contains(t, out.String(), "Server unavailable")
}
