package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"trustflow-service/internal/auth"
	"trustflow-service/internal/broker"
	"trustflow-service/internal/errs"
	"trustflow-service/internal/fraud"
	"trustflow-service/internal/models"
	"trustflow-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Commission retained by the platform on every order.
const platformFeePercent = 5

// Fraud routing thresholds: orders above the probability cutoff, or
// high-value orders from low-reputation sellers, go to manual review.
const (
	fraudProbabilityCutoff = 0.7
	highValueAmount        = 5_000_00
	lowReputationCutoff    = 40
)

// AuditRecorder records a sensitive action after its state change
// committed. Implementations must never fail the caller.
type AuditRecorder interface {
	Record(ctx context.Context, actorID int64, action, origin string)
}

// OrderStore is the record-store surface the state machine needs.
type OrderStore interface {
	GetListingByID(ctx context.Context, id int64) (*models.Listing, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	CreateOrder(ctx context.Context, order *models.Order) error
	GetOrderByID(ctx context.Context, id int64) (*models.Order, error)
	TransitionOrderTx(ctx context.Context, orderID int64, apply func(*models.Order) error) (*models.Order, error)
}

// OrderService owns the order/escrow state machine.
type OrderService struct {
	store       OrderStore
	audit       AuditRecorder
	fraudEvents *broker.FraudPublisher
	logger      *zap.Logger
}

// NewOrderService creates a new order service. fraudEvents may be nil.
func NewOrderService(store OrderStore, audit AuditRecorder, fraudEvents *broker.FraudPublisher) *OrderService {
	return &OrderService{
		store:       store,
		audit:       audit,
		fraudEvents: fraudEvents,
		logger:      util.GetLogger(),
	}
}

// PlaceOrderRequest represents a request to place an order
type PlaceOrderRequest struct {
	ListingID int64 `json:"listing_id" binding:"required"`
	CarrierID int64 `json:"carrier_id" binding:"required"`
}

// PlaceOrder creates an escrow-backed order for an active listing. The
// initial order and escrow statuses are decided by the fraud gate.
func (s *OrderService) PlaceOrder(ctx context.Context, actor auth.Identity, origin string, req *PlaceOrderRequest) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.PlaceOrder")
	defer span.End()

	if actor.Role != models.RoleBuyer {
		return nil, fmt.Errorf("only buyers can place orders: %w", errs.ErrUnauthorized)
	}

	listing, err := s.store.GetListingByID(ctx, req.ListingID)
	if err != nil {
		return nil, err
	}
	if listing.Status != models.ListingStatusActive {
		return nil, fmt.Errorf("listing %d is %s: %w", listing.ID, listing.Status, errs.ErrInvalidState)
	}

	seller, err := s.store.GetUserByID(ctx, listing.SellerID)
	if err != nil {
		return nil, err
	}

	totalAmount := listing.Price
	platformFee := totalAmount * platformFeePercent / 100
	netAmount := totalAmount - platformFee

	fraudProbability := fraud.RiskProbability(totalAmount, origin)

	orderStatus := models.OrderStatusPending
	escrowStatus := models.EscrowStatusHeld
	if fraudProbability > fraudProbabilityCutoff ||
		(totalAmount > highValueAmount && seller.ReputationScore < lowReputationCutoff) {
		orderStatus = models.OrderStatusManualReview
		escrowStatus = models.EscrowStatusFrozen
	}

	order := &models.Order{
		BuyerID:      actor.UserID,
		SellerID:     listing.SellerID,
		CarrierID:    req.CarrierID,
		ListingID:    listing.ID,
		TotalAmount:  totalAmount,
		PlatformFee:  platformFee,
		NetAmount:    netAmount,
		EscrowStatus: escrowStatus,
		OrderStatus:  orderStatus,
	}

	if err := s.store.CreateOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	util.OrdersPlacedTotal.WithLabelValues(orderStatus).Inc()
	s.logger.Info("Order placed",
		zap.Int64("order_id", order.ID),
		zap.String("order_status", orderStatus),
		zap.Float64("fraud_probability", fraudProbability))

	s.audit.Record(ctx, actor.UserID, "ORDER_CREATE_STATUS_"+strings.ToUpper(orderStatus), origin)

	if orderStatus == models.OrderStatusManualReview && s.fraudEvents != nil {
		event := &models.OrderFlaggedEvent{
			BaseEvent: models.BaseEvent{
				EventID:   uuid.New().String(),
				EventType: models.EventTypeOrderFlagged,
				Timestamp: time.Now().UTC(),
			},
			OrderID:          order.ID,
			BuyerID:          order.BuyerID,
			TotalAmount:      order.TotalAmount,
			FraudProbability: fraudProbability,
			Reason:           "manual_review",
		}
		if err := s.fraudEvents.PublishOrderFlagged(ctx, event); err != nil {
			s.logger.Error("Failed to publish OrderFlagged event", zap.Error(err))
		}
	}

	return order, nil
}

// MarkShipped moves a pending order to shipped. Only the order's carrier
// may do this.
func (s *OrderService) MarkShipped(ctx context.Context, actor auth.Identity, origin string, orderID int64) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.MarkShipped")
	defer span.End()

	order, err := s.store.TransitionOrderTx(ctx, orderID, func(o *models.Order) error {
		if actor.UserID != o.CarrierID {
			return fmt.Errorf("only the order's carrier can mark it shipped: %w", errs.ErrUnauthorized)
		}
		if o.OrderStatus != models.OrderStatusPending {
			return fmt.Errorf("cannot ship a %s order: %w", o.OrderStatus, errs.ErrInvalidState)
		}
		o.OrderStatus = models.OrderStatusShipped
		return nil
	})
	if err != nil {
		return nil, err
	}

	util.OrdersShippedTotal.Inc()
	s.audit.Record(ctx, actor.UserID, "ORDER_MARK_SHIPPED", origin)
	return order, nil
}

// ConfirmDelivery completes an order and releases escrow to the seller.
// The buyer or the carrier may confirm; completed is terminal, so
// re-confirming is rejected rather than re-applied.
func (s *OrderService) ConfirmDelivery(ctx context.Context, actor auth.Identity, origin string, orderID int64) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.ConfirmDelivery")
	defer span.End()

	order, err := s.store.TransitionOrderTx(ctx, orderID, func(o *models.Order) error {
		if actor.UserID != o.BuyerID && actor.UserID != o.CarrierID {
			return fmt.Errorf("only the order's buyer or carrier can confirm delivery: %w", errs.ErrUnauthorized)
		}
		if o.OrderStatus != models.OrderStatusPending && o.OrderStatus != models.OrderStatusShipped {
			return fmt.Errorf("cannot confirm delivery of a %s order: %w", o.OrderStatus, errs.ErrInvalidState)
		}
		now := time.Now().UTC()
		o.OrderStatus = models.OrderStatusCompleted
		o.EscrowStatus = models.EscrowStatusReleasedToSeller
		o.CompletedAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}

	util.OrdersCompletedTotal.Inc()
	s.logger.Info("Delivery confirmed", zap.Int64("order_id", order.ID))
	s.audit.Record(ctx, actor.UserID, "ORDER_CONFIRM_DELIVERY", origin)
	return order, nil
}

// RaiseDispute freezes an order in the disputed state. Only the buyer may
// dispute, and never a completed order; resolution is a manual process.
func (s *OrderService) RaiseDispute(ctx context.Context, actor auth.Identity, origin string, orderID int64) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.RaiseDispute")
	defer span.End()

	order, err := s.store.TransitionOrderTx(ctx, orderID, func(o *models.Order) error {
		if actor.UserID != o.BuyerID {
			return fmt.Errorf("only the order's buyer can open a dispute: %w", errs.ErrUnauthorized)
		}
		if o.OrderStatus == models.OrderStatusCompleted {
			return fmt.Errorf("cannot dispute a completed order: %w", errs.ErrInvalidState)
		}
		o.OrderStatus = models.OrderStatusDisputed
		o.EscrowStatus = models.EscrowStatusDisputed
		return nil
	})
	if err != nil {
		return nil, err
	}

	util.OrdersDisputedTotal.Inc()
	s.logger.Warn("Dispute opened", zap.Int64("order_id", order.ID), zap.Int64("buyer_id", actor.UserID))
	s.audit.Record(ctx, actor.UserID, "ORDER_DISPUTE", origin)
	return order, nil
}

// ReleaseManualReview returns a manually reviewed order to the normal
// flow. Admin only.
func (s *OrderService) ReleaseManualReview(ctx context.Context, actor auth.Identity, origin string, orderID int64) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.ReleaseManualReview")
	defer span.End()

	if actor.Role != models.RoleAdmin {
		return nil, fmt.Errorf("only admins can release manual review: %w", errs.ErrUnauthorized)
	}

	order, err := s.store.TransitionOrderTx(ctx, orderID, func(o *models.Order) error {
		if o.OrderStatus != models.OrderStatusManualReview {
			return fmt.Errorf("order is not in manual review: %w", errs.ErrInvalidState)
		}
		o.OrderStatus = models.OrderStatusPending
		o.EscrowStatus = models.EscrowStatusHeld
		return nil
	})
	if err != nil {
		return nil, err
	}

	util.OrdersReleasedTotal.Inc()
	s.audit.Record(ctx, actor.UserID, "ORDER_MANUAL_REVIEW_RELEASE", origin)
	return order, nil
}

// GetOrder retrieves an order visible to the actor. Only participants and
// admins may read an order.
func (s *OrderService) GetOrder(ctx context.Context, actor auth.Identity, orderID int64) (*models.Order, error) {
	order, err := s.store.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if actor.Role != models.RoleAdmin &&
		actor.UserID != order.BuyerID &&
		actor.UserID != order.SellerID &&
		actor.UserID != order.CarrierID {
		return nil, fmt.Errorf("not a participant of order %d: %w", orderID, errs.ErrUnauthorized)
	}
	return order, nil
}
