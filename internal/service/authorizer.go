package service

import (
	"context"

	"github.com/reelscore/backend/internal/models"
	"github.com/reelscore/backend/internal/policy"
	"github.com/reelscore/backend/internal/repository"
	"github.com/reelscore/backend/internal/utils"
	"github.com/reelscore/backend/pkg/logger"
	"go.uber.org/zap"
)

// loadSubject resolves the caller against the credential store. The role always
// comes from the stored user, never from the token claim.
func loadSubject(ctx context.Context, tx *repository.Store, caller *utils.Claims) (policy.Subject, *models.User, error) {
	if caller == nil {
		return policy.Subject{}, nil, nil
	}

	user, err := tx.Users.GetUserByID(ctx, caller.UserID)
	if err != nil {
		return policy.Subject{}, nil, err
	}
	if user == nil {
		return policy.Subject{Authenticated: true, UserID: caller.UserID}, nil, nil
	}

	if user.IsAdmin != caller.IsAdmin {
		logger.Log.Info("Token role differs from stored role, using stored role",
			zap.Uint("user_id", user.ID),
			zap.Bool("token_is_admin", caller.IsAdmin),
			zap.Bool("stored_is_admin", user.IsAdmin),
		)
	}

	return policy.Subject{
		Authenticated: true,
		Found:         true,
		UserID:        user.ID,
		IsAdmin:       user.IsAdmin,
	}, user, nil
}

// authorize loads the caller and evaluates the policy for an action with an optional target.
func authorize(ctx context.Context, tx *repository.Store, caller *utils.Claims, action policy.Action, target *policy.Target) (*models.User, error) {
	subject, user, err := loadSubject(ctx, tx, caller)
	if err != nil {
		return nil, err
	}

	decision := policy.Evaluate(subject, action, target)
	if !decision.Allowed {
		logger.Log.Warn("Action denied",
			zap.String("action", string(action)),
			zap.Uint("user_id", subject.UserID),
			zap.String("reason", decision.Reason),
		)
		return nil, decision.Error()
	}
	return user, nil
}
