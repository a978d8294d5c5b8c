package service

import (
	"context"
	"fmt"

	"trustflow-service/internal/auth"
	"trustflow-service/internal/errs"
	"trustflow-service/internal/models"
	"trustflow-service/internal/scoring"
	"trustflow-service/internal/util"

	"go.uber.org/zap"
)

const defaultCategory = "General"

// ListingStore is the record-store surface listing management needs.
type ListingStore interface {
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	CreateListing(ctx context.Context, listing *models.Listing) error
	ListActiveListings(ctx context.Context, q string, limit, offset int) ([]models.Listing, error)
}

// ReputationSource serves cached seller reputation ahead of the record
// store. A miss falls through to the seller row.
type ReputationSource interface {
	GetReputation(ctx context.Context, sellerID int64) (float64, bool, error)
}

// ListingService creates and lists products, stamping a trust score on
// every new listing.
type ListingService struct {
	store  ListingStore
	cache  ReputationSource
	scorer scoring.Scorer
	audit  AuditRecorder
	logger *zap.Logger
}

// NewListingService creates a new listing service. cache may be nil.
func NewListingService(store ListingStore, cache ReputationSource, scorer scoring.Scorer, audit AuditRecorder) *ListingService {
	return &ListingService{
		store:  store,
		cache:  cache,
		scorer: scorer,
		audit:  audit,
		logger: util.GetLogger(),
	}
}

// sellerReputation prefers the cached score; the seller row is the source
// of truth on a miss or a cache error.
func (s *ListingService) sellerReputation(ctx context.Context, sellerID int64) (float64, error) {
	if s.cache != nil {
		score, ok, err := s.cache.GetReputation(ctx, sellerID)
		if err != nil {
			s.logger.Warn("Reputation cache lookup failed",
				zap.Int64("seller_id", sellerID),
				zap.Error(err))
		} else if ok {
			return score, nil
		}
	}

	seller, err := s.store.GetUserByID(ctx, sellerID)
	if err != nil {
		return 0, err
	}
	return seller.ReputationScore, nil
}

// CreateListingRequest represents a request to create a listing. Price is
// in cents.
type CreateListingRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Price       int64  `json:"price" binding:"required"`
	Category    string `json:"category"`
}

// CreateListing scores and persists a new listing for a seller.
func (s *ListingService) CreateListing(ctx context.Context, actor auth.Identity, origin string, req *CreateListingRequest) (*models.Listing, error) {
	ctx, span := util.StartSpan(ctx, "ListingService.CreateListing")
	defer span.End()

	if actor.Role != models.RoleSeller {
		return nil, fmt.Errorf("only sellers can create listings: %w", errs.ErrUnauthorized)
	}
	if req.Price <= 0 {
		return nil, fmt.Errorf("price must be positive: %w", errs.ErrInvalidState)
	}

	reputation, err := s.sellerReputation(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}

	assessment := s.scorer.Score(ctx, scoring.Input{
		Title:            req.Title,
		Description:      req.Description,
		Price:            req.Price,
		SellerReputation: reputation,
	})

	category := req.Category
	if category == "" {
		category = defaultCategory
	}

	trustScore := int64(assessment.TrustScore)
	listing := &models.Listing{
		SellerID:    actor.UserID,
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Category:    category,
		TrustScore:  &trustScore,
		Status:      models.ListingStatusActive,
	}

	if err := s.store.CreateListing(ctx, listing); err != nil {
		return nil, fmt.Errorf("failed to create listing: %w", err)
	}

	util.ListingsCreatedTotal.Inc()
	s.logger.Info("Listing created",
		zap.Int64("listing_id", listing.ID),
		zap.Int("trust_score", assessment.TrustScore),
		zap.String("risk_level", assessment.RiskLevel))

	s.audit.Record(ctx, actor.UserID, "PRODUCT_CREATE", origin)
	return listing, nil
}

// ListListings returns active listings matching an optional search term.
func (s *ListingService) ListListings(ctx context.Context, q string, limit, offset int) ([]models.Listing, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return s.store.ListActiveListings(ctx, q, limit, offset)
}

// Analyze scores a prospective listing without persisting anything.
func (s *ListingService) Analyze(ctx context.Context, actor auth.Identity, req *CreateListingRequest) (*models.TrustAssessment, error) {
	ctx, span := util.StartSpan(ctx, "ListingService.Analyze")
	defer span.End()

	if req.Price <= 0 {
		return nil, fmt.Errorf("price must be positive: %w", errs.ErrInvalidState)
	}

	reputation, err := s.sellerReputation(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}

	assessment := s.scorer.Score(ctx, scoring.Input{
		Title:            req.Title,
		Description:      req.Description,
		Price:            req.Price,
		SellerReputation: reputation,
	})
	return &assessment, nil
}
