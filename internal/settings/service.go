package settings

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/lift-alumni/liftfund/internal/audit"
	"github.com/lift-alumni/liftfund/internal/money"
	"github.com/lift-alumni/liftfund/internal/rbac"
)

// Repository provides persistence for settings.
type Repository interface {
	Current(ctx context.Context) (SplitRatio, error)
	Set(ctx context.Context, ratio SplitRatio) error
}

// AuditRecorder persists audit lines for configuration changes.
type AuditRecorder interface {
	Record(ctx context.Context, rec audit.Record) error
}

// Service reads and updates fund configuration.
type Service struct {
	repo   Repository
	audit  AuditRecorder
	logger *slog.Logger
	now    func() time.Time
}

// NewService constructs the settings service.
func NewService(repo Repository, recorder AuditRecorder, logger *slog.Logger) *Service {
	return &Service{repo: repo, audit: recorder, logger: logger, now: time.Now}
}

// CurrentRatio implements ledger.RatioProvider.
func (s *Service) CurrentRatio(ctx context.Context) (int, error) {
	ratio, err := s.repo.Current(ctx)
	if err != nil {
		return 0, err
	}
	return ratio.Percent, nil
}

// Current returns the full configured ratio record.
func (s *Service) Current(ctx context.Context) (SplitRatio, error) {
	return s.repo.Current(ctx)
}

// SetRatio updates the split ratio. Applies only to contributions
// recorded afterwards; existing entries keep their snapshot.
func (s *Service) SetRatio(ctx context.Context, percent int, actor rbac.Actor) (SplitRatio, error) {
	if !actor.Role.CanDecide() {
		return SplitRatio{}, fmt.Errorf("%w: only admins may change the ratio", ErrForbidden)
	}
	if !money.ValidPercent(percent) {
		return SplitRatio{}, fmt.Errorf("%w: percent must be between 0 and 100", ErrValidation)
	}

	previous, err := s.repo.Current(ctx)
	if err != nil {
		return SplitRatio{}, err
	}

	ratio := SplitRatio{Percent: percent, UpdatedBy: actor.ID, UpdatedAt: s.now()}
	if err := s.repo.Set(ctx, ratio); err != nil {
		return SplitRatio{}, err
	}

	if err := s.audit.Record(ctx, audit.Record{
		Entity:   audit.EntitySettings,
		EntityID: uuid.Nil,
		Action:   audit.ActionRatioChanged,
		ActorID:  actor.ID,
		Meta:     map[string]any{"from": previous.Percent, "to": percent},
		At:       ratio.UpdatedAt,
	}); err != nil {
		s.logger.Error("record ratio change", slog.Any("error", err))
	}

	s.logger.Info("split ratio updated",
		slog.Int("from", previous.Percent),
		slog.Int("to", percent),
		slog.Int64("actor", actor.ID))
	return ratio, nil
}
