package service

import (
	"context"
	"errors"
	"testing"

	"trustflow-service/internal/auth"
	"trustflow-service/internal/errs"
	"trustflow-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reviewFixture(f *fakeStore) *models.Order {
	f.addUser(models.User{ID: 1, Role: models.RoleBuyer})
	f.addUser(models.User{ID: 2, Role: models.RoleSeller, ReputationScore: 50})
	return f.addOrder(models.Order{
		ID: 30, BuyerID: 1, SellerID: 2, CarrierID: 3, ListingID: 10,
		OrderStatus: models.OrderStatusCompleted, EscrowStatus: models.EscrowStatusReleasedToSeller,
	})
}

func TestRecordReviewUpdatesReputation(t *testing.T) {
	f := newFakeStore()
	reviewFixture(f)
	cache := newFakeCache()
	audit := &fakeAudit{}
	svc := NewReviewService(f, cache, audit)
	buyer := auth.Identity{UserID: 1, Role: models.RoleBuyer}

	review, err := svc.RecordReview(context.Background(), buyer, testOrigin, &RecordReviewRequest{
		OrderID: 30, Rating: 4, Comment: "arrived on time",
	})
	require.NoError(t, err)

	assert.Equal(t, int64(2), review.RevieweeID)
	// A single 4-star rating scales to 80 on the 0-100 reputation scale.
	assert.Equal(t, 80.0, f.users[2].ReputationScore)
	assert.Equal(t, 80.0, cache.scores[2])
	assert.Equal(t, []string{"REVIEW_CREATE"}, audit.actions)
}

func TestRecordReviewAveragesAcrossOrders(t *testing.T) {
	f := newFakeStore()
	reviewFixture(f)
	for _, id := range []int64{31, 32} {
		f.addOrder(models.Order{
			ID: id, BuyerID: 1, SellerID: 2, CarrierID: 3,
			OrderStatus: models.OrderStatusCompleted,
		})
	}
	svc := NewReviewService(f, newFakeCache(), &fakeAudit{})
	buyer := auth.Identity{UserID: 1, Role: models.RoleBuyer}

	for orderID, rating := range map[int64]int{30: 5, 31: 3, 32: 4} {
		_, err := svc.RecordReview(context.Background(), buyer, testOrigin, &RecordReviewRequest{
			OrderID: orderID, Rating: rating,
		})
		require.NoError(t, err)
	}

	// mean(5,3,4) = 4.0, scaled by 20.
	assert.Equal(t, 80.0, f.users[2].ReputationScore)
}

func TestRecordReviewRejectsDuplicate(t *testing.T) {
	f := newFakeStore()
	reviewFixture(f)
	svc := NewReviewService(f, newFakeCache(), &fakeAudit{})
	buyer := auth.Identity{UserID: 1, Role: models.RoleBuyer}
	req := &RecordReviewRequest{OrderID: 30, Rating: 5}

	_, err := svc.RecordReview(context.Background(), buyer, testOrigin, req)
	require.NoError(t, err)

	_, err = svc.RecordReview(context.Background(), buyer, testOrigin, req)
	assert.True(t, errors.Is(err, errs.ErrInvalidState))
}

func TestRecordReviewRejectsOutOfRangeRating(t *testing.T) {
	f := newFakeStore()
	reviewFixture(f)
	svc := NewReviewService(f, newFakeCache(), &fakeAudit{})
	buyer := auth.Identity{UserID: 1, Role: models.RoleBuyer}

	for _, rating := range []int{0, 6, -1} {
		_, err := svc.RecordReview(context.Background(), buyer, testOrigin, &RecordReviewRequest{
			OrderID: 30, Rating: rating,
		})
		assert.True(t, errors.Is(err, errs.ErrInvalidState), "rating %d", rating)
	}
}

func TestRecordReviewRejectsNonBuyer(t *testing.T) {
	f := newFakeStore()
	reviewFixture(f)
	svc := NewReviewService(f, newFakeCache(), &fakeAudit{})

	_, err := svc.RecordReview(context.Background(), auth.Identity{UserID: 2, Role: models.RoleSeller}, testOrigin, &RecordReviewRequest{
		OrderID: 30, Rating: 5,
	})
	assert.True(t, errors.Is(err, errs.ErrUnauthorized))
}

func TestRecordReviewMissingOrder(t *testing.T) {
	f := newFakeStore()
	reviewFixture(f)
	svc := NewReviewService(f, newFakeCache(), &fakeAudit{})

	_, err := svc.RecordReview(context.Background(), auth.Identity{UserID: 1, Role: models.RoleBuyer}, testOrigin, &RecordReviewRequest{
		OrderID: 999, Rating: 5,
	})
	assert.True(t, errors.Is(err, errs.ErrNotFound))
}

func TestRecordReviewWithoutCache(t *testing.T) {
	f := newFakeStore()
	reviewFixture(f)
	svc := NewReviewService(f, nil, &fakeAudit{})

	_, err := svc.RecordReview(context.Background(), auth.Identity{UserID: 1, Role: models.RoleBuyer}, testOrigin, &RecordReviewRequest{
		OrderID: 30, Rating: 5,
	})
	assert.NoError(t, err)
}
