package service

import (
	"context"
	"fmt"
	"strings"

	"trustflow-service/internal/auth"
	"trustflow-service/internal/errs"
	"trustflow-service/internal/models"
	"trustflow-service/internal/util"

	"go.uber.org/zap"
)

// UserStore is the record-store surface profile operations need.
type UserStore interface {
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	UpdateUserTier(ctx context.Context, userID int64, tier string) (*models.User, error)
	ListCarriers(ctx context.Context) ([]models.User, error)
}

// UserService exposes profile reads and the simulated membership upgrade.
type UserService struct {
	store  UserStore
	audit  AuditRecorder
	logger *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(store UserStore, audit AuditRecorder) *UserService {
	return &UserService{
		store:  store,
		audit:  audit,
		logger: util.GetLogger(),
	}
}

// Me returns the actor's own record.
func (s *UserService) Me(ctx context.Context, actor auth.Identity) (*models.User, error) {
	return s.store.GetUserByID(ctx, actor.UserID)
}

// UpgradeTierRequest represents a membership upgrade
type UpgradeTierRequest struct {
	Tier string `json:"tier" binding:"required"`
}

// UpgradeTier changes the actor's membership tier. Payment is simulated;
// the tier value itself must be one of the known levels.
func (s *UserService) UpgradeTier(ctx context.Context, actor auth.Identity, origin string, req *UpgradeTierRequest) (*models.User, error) {
	ctx, span := util.StartSpan(ctx, "UserService.UpgradeTier")
	defer span.End()

	if !models.ValidTier(req.Tier) {
		return nil, fmt.Errorf("unknown tier %q: %w", req.Tier, errs.ErrInvalidState)
	}

	user, err := s.store.UpdateUserTier(ctx, actor.UserID, req.Tier)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Tier upgraded", zap.Int64("user_id", actor.UserID), zap.String("tier", req.Tier))
	s.audit.Record(ctx, actor.UserID, "USER_UPGRADE_"+strings.ToUpper(req.Tier), origin)
	return user, nil
}

// ListCarriers returns every registered carrier.
func (s *UserService) ListCarriers(ctx context.Context) ([]models.User, error) {
	return s.store.ListCarriers(ctx)
}
