package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"storylion-server/internal/interfaces"
	"storylion-server/internal/models"
)

// AccountService is the verify-only account surface: this server issues no
// tokens, it only resolves users and owns the deletion cascade.
type AccountService interface {
	GetUser(ctx context.Context, userID int64) (*models.User, error)
	// DeleteAccount removes the user and every owned record in one transaction.
	DeleteAccount(ctx context.Context, userID int64) error
}

// Compile-time check to ensure accountServiceImpl implements AccountService
var _ AccountService = (*accountServiceImpl)(nil)

type accountServiceImpl struct {
	userRepo interfaces.UserRepository
	logger   *zap.Logger
}

// NewAccountService creates a new AccountService.
func NewAccountService(userRepo interfaces.UserRepository, logger *zap.Logger) AccountService {
	return &accountServiceImpl{
		userRepo: userRepo,
		logger:   logger.Named("AccountService"),
	}
}

func (s *accountServiceImpl) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	return s.userRepo.GetUserByID(ctx, userID)
}

func (s *accountServiceImpl) DeleteAccount(ctx context.Context, userID int64) error {
	if _, err := s.userRepo.GetUserByID(ctx, userID); err != nil {
		return err
	}
	if err := s.userRepo.DeleteUser(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete account %d: %w", userID, err)
	}
	s.logger.Info("Account deleted", zap.Int64("userID", userID))
	return nil
}
