package service

import (
	"context"
	"fmt"

	"trustflow-service/internal/auth"
	"trustflow-service/internal/errs"
	"trustflow-service/internal/models"
	"trustflow-service/internal/util"

	"go.uber.org/zap"
)

// ReviewStore is the record-store surface the reputation pipeline needs.
// CreateReviewTx must commit the review and the recomputed seller
// reputation atomically.
type ReviewStore interface {
	GetOrderByID(ctx context.Context, id int64) (*models.Order, error)
	CreateReviewTx(ctx context.Context, review *models.Review) (float64, error)
}

// ReputationCache is refreshed best-effort after a review commits.
type ReputationCache interface {
	SetReputation(ctx context.Context, sellerID int64, score float64) error
}

// ReviewService records reviews and keeps seller reputation current.
type ReviewService struct {
	store  ReviewStore
	cache  ReputationCache
	audit  AuditRecorder
	logger *zap.Logger
}

// NewReviewService creates a new review service. cache may be nil.
func NewReviewService(store ReviewStore, cache ReputationCache, audit AuditRecorder) *ReviewService {
	return &ReviewService{
		store:  store,
		cache:  cache,
		audit:  audit,
		logger: util.GetLogger(),
	}
}

// RecordReviewRequest represents a request to review an order
type RecordReviewRequest struct {
	OrderID int64  `json:"order_id" binding:"required"`
	Rating  int    `json:"rating" binding:"required"`
	Comment string `json:"comment"`
}

// RecordReview creates the buyer's review of an order and recomputes the
// seller's reputation in the same transaction.
func (s *ReviewService) RecordReview(ctx context.Context, actor auth.Identity, origin string, req *RecordReviewRequest) (*models.Review, error) {
	ctx, span := util.StartSpan(ctx, "ReviewService.RecordReview")
	defer span.End()

	if req.Rating < 1 || req.Rating > 5 {
		return nil, fmt.Errorf("rating %d outside 1-5: %w", req.Rating, errs.ErrInvalidState)
	}

	order, err := s.store.GetOrderByID(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}
	if actor.UserID != order.BuyerID {
		return nil, fmt.Errorf("only the order's buyer can leave a review: %w", errs.ErrUnauthorized)
	}

	review := &models.Review{
		OrderID:    order.ID,
		ReviewerID: actor.UserID,
		RevieweeID: order.SellerID,
		Rating:     req.Rating,
		Comment:    req.Comment,
	}

	reputation, err := s.store.CreateReviewTx(ctx, review)
	if err != nil {
		return nil, err
	}

	util.ReviewsRecordedTotal.Inc()
	s.logger.Info("Review recorded",
		zap.Int64("order_id", order.ID),
		zap.Int64("seller_id", order.SellerID),
		zap.Float64("reputation_score", reputation))

	if s.cache != nil {
		if err := s.cache.SetReputation(ctx, order.SellerID, reputation); err != nil {
			s.logger.Warn("Failed to refresh reputation cache",
				zap.Int64("seller_id", order.SellerID),
				zap.Error(err))
		}
	}

	s.audit.Record(ctx, actor.UserID, "REVIEW_CREATE", origin)
	return review, nil
}
