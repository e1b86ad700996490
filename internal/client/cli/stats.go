package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/cybermorph/morphcli/internal/client/session"
	"github.com/cybermorph/morphcli/internal/common"
)

// Stats prints the caller's own statistics, or the service-wide overview when
// the session holds the admin role.
func (a *App) Stats(ctx context.Context) error {
	if a.sessions.CurrentRole() == session.RoleAdmin {
		stats, err := a.stats.Overview(ctx)
		if err != nil {
			return a.reportError(err)
		}
		fmt.Fprintf(a.out, "Total scans: %d, threats: %d", stats.TotalScans, stats.Threats)
		if stats.TotalUsers != nil {
			fmt.Fprintf(a.out, ", users: %d", *stats.TotalUsers)
		}
		fmt.Fprintln(a.out)
		return nil
	}

	stats, err := a.stats.MyStats(ctx)
	if err != nil {
		return a.reportError(err)
	}
	fmt.Fprintf(a.out, "Your scans: %d, threats found: %d\n", stats.TotalScans, stats.Threats)
	return nil
}

// Users lists registered accounts (admin only).
func (a *App) Users(ctx context.Context) error {
	users, err := a.stats.Users(ctx)
	if err != nil {
		return a.reportError(err)
	}
	for _, u := range users {
		fmt.Fprintf(a.out, "%4d  %-20s %-30s %s\n", u.ID, u.Username, u.Email, u.Role)
	}
	return nil
}

// Scans lists recent scans across all users (admin only).
func (a *App) Scans(ctx context.Context) error {
	scans, err := a.stats.Scans(ctx)
	if err != nil {
		return a.reportError(err)
	}
	for _, s := range scans {
		score := "-"
		if s.Score != nil {
			score = fmt.Sprintf("%.2f", *s.Score)
		}
		fmt.Fprintf(a.out, "%4d  %-30s %-12s %s\n", s.ID, s.Filename, s.Verdict, score)
	}
	return nil
}

// Alerts lists raised alerts (admin only). The payload shape varies by alert
// kind, so the raw JSON is shown as-is.
func (a *App) Alerts(ctx context.Context) error {
	alerts, err := a.stats.Alerts(ctx)
	if err != nil {
		return a.reportError(err)
	}
	if len(alerts) == 0 {
		fmt.Fprintln(a.out, "No alerts")
		return nil
	}
	for _, alert := range alerts {
		fmt.Fprintln(a.out, string(alert))
	}
	return nil
}

func (a *App) reportError(err error) error {
	switch {
	case errors.Is(err, common.ErrUnauthorized):
		fmt.Fprintln(a.out, "Not allowed: this command requires the admin role or a valid login")
	case errors.Is(err, common.ErrUnavailable):
		fmt.Fprintln(a.out, "Server unavailable, try again later")
	default:
		fmt.Fprintf(a.out, "Request failed: %s\n", err.Error())
	}
	return err
}
