package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cybermorph/morphcli/internal/client/api"
	"github.com/cybermorph/morphcli/internal/client/models"
	"github.com/cybermorph/morphcli/internal/client/session"
	"github.com/cybermorph/morphcli/internal/common"
)

// StatsService exposes the read-only reporting surface. Per-user stats are
// open to anyone authenticated; the admin reads are gated locally on the
// session role before any request is made, so a plain user never generates
// a doomed round trip.
type StatsService interface {
	MyStats(ctx context.Context) (*models.Stats, error)
	Overview(ctx context.Context) (*models.Stats, error)
	Users(ctx context.Context) ([]models.User, error)
	Scans(ctx context.Context) ([]models.ScanResponse, error)
	Alerts(ctx context.Context) ([]json.RawMessage, error)
}

type statsService struct {
	backend  api.Backend
	sessions *session.Manager
}

// NewStatsService constructs a StatsService bound to the given backend and
// session manager.
func NewStatsService(backend api.Backend, sessions *session.Manager) StatsService {
	return &statsService{backend: backend, sessions: sessions}
}

func (s *statsService) MyStats(ctx context.Context) (*models.Stats, error) {
	return s.backend.MyStats(ctx)
}

func (s *statsService) Overview(ctx context.Context) (*models.Stats, error) {
	if err := s.requireAdmin(); err != nil {
		return nil, err
	}
	return s.backend.AdminStats(ctx)
}

func (s *statsService) Users(ctx context.Context) ([]models.User, error) {
	if err := s.requireAdmin(); err != nil {
		return nil, err
	}
	return s.backend.AdminUsers(ctx)
}

func (s *statsService) Scans(ctx context.Context) ([]models.ScanResponse, error) {
	if err := s.requireAdmin(); err != nil {
		return nil, err
	}
	return s.backend.AdminScans(ctx)
}

func (s *statsService) Alerts(ctx context.Context) ([]json.RawMessage, error) {
	if err := s.requireAdmin(); err != nil {
		return nil, err
	}
	return s.backend.AdminAlerts(ctx)
}

func (s *statsService) requireAdmin() error {
	if s.sessions.CurrentRole() != session.RoleAdmin {
		return fmt.Errorf("admin role required: %w", common.ErrUnauthorized)
	}
	return nil
}
