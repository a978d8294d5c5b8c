package store

import (
	"context"
	"database/sql"
	"fmt"

	"trustflow-service/internal/errs"
	"trustflow-service/internal/models"
)

// CreateOrder creates a new order
func (s *Store) CreateOrder(ctx context.Context, order *models.Order) error {
	query := `
		INSERT INTO orders (buyer_id, seller_id, carrier_id, listing_id,
			total_amount, platform_fee, net_amount, escrow_status, order_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at`

	return s.db.GetContext(ctx, order, query,
		order.BuyerID, order.SellerID, order.CarrierID, order.ListingID,
		order.TotalAmount, order.PlatformFee, order.NetAmount,
		order.EscrowStatus, order.OrderStatus)
}

// GetOrderByID retrieves an order by ID
func (s *Store) GetOrderByID(ctx context.Context, id int64) (*models.Order, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order, "SELECT * FROM orders WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("order %d: %w", id, errs.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// TransitionOrderTx locks the order row, applies the transition closure and
// writes the resulting statuses in one transaction. Concurrent transitions
// on the same order serialize on the row lock; a closure error rolls back.
func (s *Store) TransitionOrderTx(ctx context.Context, orderID int64, apply func(*models.Order) error) (*models.Order, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var order models.Order
	err = tx.GetContext(ctx, &order, "SELECT * FROM orders WHERE id = $1 FOR UPDATE", orderID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("order %d: %w", orderID, errs.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock order: %w", err)
	}

	if err := apply(&order); err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx,
		"UPDATE orders SET order_status = $1, escrow_status = $2, completed_at = $3 WHERE id = $4",
		order.OrderStatus, order.EscrowStatus, order.CompletedAt, order.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to update order: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &order, nil
}

// CreateReviewTx inserts the review and recomputes the seller's reputation
// in one transaction, locking the seller row so concurrent reviews
// serialize. Returns the new reputation score.
func (s *Store) CreateReviewTx(ctx context.Context, review *models.Review) (float64, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var exists bool
	err = tx.GetContext(ctx, &exists,
		"SELECT EXISTS(SELECT 1 FROM reviews WHERE order_id = $1)", review.OrderID)
	if err != nil {
		return 0, err
	}
	if exists {
		return 0, fmt.Errorf("order %d already reviewed: %w", review.OrderID, errs.ErrInvalidState)
	}

	var sellerID int64
	err = tx.GetContext(ctx, &sellerID,
		"SELECT id FROM users WHERE id = $1 FOR UPDATE", review.RevieweeID)
	if err == sql.ErrNoRows {
		return 0, fmt.Errorf("user %d: %w", review.RevieweeID, errs.ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to lock seller: %w", err)
	}

	err = tx.GetContext(ctx, review, `
		INSERT INTO reviews (order_id, reviewer_id, reviewee_id, rating, comment)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`,
		review.OrderID, review.ReviewerID, review.RevieweeID, review.Rating, review.Comment)
	if err != nil {
		return 0, fmt.Errorf("failed to create review: %w", err)
	}

	// Average rating on the 1-5 scale rescaled to 0-100.
	var reputation float64
	err = tx.GetContext(ctx, &reputation,
		"SELECT 20.0 * SUM(rating) / COUNT(*) FROM reviews WHERE reviewee_id = $1",
		review.RevieweeID)
	if err != nil {
		return 0, fmt.Errorf("failed to aggregate ratings: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		"UPDATE users SET reputation_score = $1 WHERE id = $2", reputation, sellerID)
	if err != nil {
		return 0, fmt.Errorf("failed to update reputation: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return reputation, nil
}

// ListReviewsForSeller retrieves all reviews received by a seller
func (s *Store) ListReviewsForSeller(ctx context.Context, sellerID int64) ([]models.Review, error) {
	reviews := []models.Review{}
	err := s.db.SelectContext(ctx, &reviews,
		"SELECT * FROM reviews WHERE reviewee_id = $1 ORDER BY created_at DESC", sellerID)
	return reviews, err
}

// CreateAuditLog records a sensitive action
func (s *Store) CreateAuditLog(ctx context.Context, entry *models.AuditLog) error {
	query := `
		INSERT INTO audit_logs (user_id, action, ip_address, timestamp)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	return s.db.GetContext(ctx, &entry.ID, query,
		entry.UserID, entry.Action, entry.IPAddress, entry.Timestamp)
}
