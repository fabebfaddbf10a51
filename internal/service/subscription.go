package service

import (
	"context"

	"github.com/bldrfitness/bldr/internal/api/dto"
	ierr "github.com/bldrfitness/bldr/internal/errors"
	"github.com/bldrfitness/bldr/internal/types"
)

type SubscriptionService interface {
	// GetCurrent returns the caller's most recently updated subscription.
	GetCurrent(ctx context.Context) (*dto.SubscriptionResponse, error)
}

type subscriptionService struct {
	ServiceParams
}

func NewSubscriptionService(params ServiceParams) SubscriptionService {
	return &subscriptionService{
		ServiceParams: params,
	}
}

func (s *subscriptionService) GetCurrent(ctx context.Context) (*dto.SubscriptionResponse, error) {
	userID := types.GetUserID(ctx)
	if userID == "" {
		return nil, ierr.NewError("user not authenticated").
			WithHint("Authentication required").
			Mark(ierr.ErrUnauthorized)
	}

	sub, err := s.SubscriptionRepo.GetLatestForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return dto.NewSubscriptionResponse(sub), nil
}
