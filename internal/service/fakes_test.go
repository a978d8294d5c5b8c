package service

import (
	"context"
	"fmt"

	"trustflow-service/internal/errs"
	"trustflow-service/internal/models"
)

// fakeStore is an in-memory record store used by the service tests.
type fakeStore struct {
	users    map[int64]*models.User
	listings map[int64]*models.Listing
	orders   map[int64]*models.Order
	reviews  []*models.Review
	nextID   int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:    map[int64]*models.User{},
		listings: map[int64]*models.Listing{},
		orders:   map[int64]*models.Order{},
	}
}

func (f *fakeStore) addUser(u models.User) *models.User {
	f.users[u.ID] = &u
	return &u
}

func (f *fakeStore) addListing(l models.Listing) *models.Listing {
	f.listings[l.ID] = &l
	return &l
}

func (f *fakeStore) addOrder(o models.Order) *models.Order {
	f.orders[o.ID] = &o
	return &o
}

func (f *fakeStore) GetUserByID(_ context.Context, id int64) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, fmt.Errorf("user %d: %w", id, errs.ErrNotFound)
	}
	out := *u
	return &out, nil
}

func (f *fakeStore) UpdateUserTier(_ context.Context, userID int64, tier string) (*models.User, error) {
	u, ok := f.users[userID]
	if !ok {
		return nil, fmt.Errorf("user %d: %w", userID, errs.ErrNotFound)
	}
	u.Tier = tier
	out := *u
	return &out, nil
}

func (f *fakeStore) ListCarriers(_ context.Context) ([]models.User, error) {
	var carriers []models.User
	for _, u := range f.users {
		if u.Role == models.RoleCarrier {
			carriers = append(carriers, *u)
		}
	}
	return carriers, nil
}

func (f *fakeStore) GetListingByID(_ context.Context, id int64) (*models.Listing, error) {
	l, ok := f.listings[id]
	if !ok {
		return nil, fmt.Errorf("listing %d: %w", id, errs.ErrNotFound)
	}
	out := *l
	return &out, nil
}

func (f *fakeStore) CreateListing(_ context.Context, listing *models.Listing) error {
	f.nextID++
	listing.ID = f.nextID
	stored := *listing
	f.listings[listing.ID] = &stored
	return nil
}

func (f *fakeStore) ListActiveListings(_ context.Context, q string, limit, offset int) ([]models.Listing, error) {
	var active []models.Listing
	for _, l := range f.listings {
		if l.Status == models.ListingStatusActive {
			active = append(active, *l)
		}
	}
	return active, nil
}

func (f *fakeStore) CreateOrder(_ context.Context, order *models.Order) error {
	f.nextID++
	order.ID = f.nextID
	stored := *order
	f.orders[order.ID] = &stored
	return nil
}

func (f *fakeStore) GetOrderByID(_ context.Context, id int64) (*models.Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return nil, fmt.Errorf("order %d: %w", id, errs.ErrNotFound)
	}
	out := *o
	return &out, nil
}

func (f *fakeStore) TransitionOrderTx(_ context.Context, orderID int64, apply func(*models.Order) error) (*models.Order, error) {
	o, ok := f.orders[orderID]
	if !ok {
		return nil, fmt.Errorf("order %d: %w", orderID, errs.ErrNotFound)
	}
	candidate := *o
	if err := apply(&candidate); err != nil {
		return nil, err
	}
	f.orders[orderID] = &candidate
	result := candidate
	return &result, nil
}

func (f *fakeStore) CreateReviewTx(_ context.Context, review *models.Review) (float64, error) {
	for _, r := range f.reviews {
		if r.OrderID == review.OrderID {
			return 0, fmt.Errorf("order %d already reviewed: %w", review.OrderID, errs.ErrInvalidState)
		}
	}
	seller, ok := f.users[review.RevieweeID]
	if !ok {
		return 0, fmt.Errorf("user %d: %w", review.RevieweeID, errs.ErrNotFound)
	}

	f.nextID++
	review.ID = f.nextID
	stored := *review
	f.reviews = append(f.reviews, &stored)

	sum, count := 0, 0
	for _, r := range f.reviews {
		if r.RevieweeID == review.RevieweeID {
			sum += r.Rating
			count++
		}
	}
	reputation := 20.0 * float64(sum) / float64(count)
	seller.ReputationScore = reputation
	return reputation, nil
}

// fakeAudit records actions so tests can assert on emitted audit events.
type fakeAudit struct {
	actions []string
}

func (f *fakeAudit) Record(_ context.Context, _ int64, action, _ string) {
	f.actions = append(f.actions, action)
}

// fakeCache captures reputation refreshes.
type fakeCache struct {
	scores map[int64]float64
}

func newFakeCache() *fakeCache {
	return &fakeCache{scores: map[int64]float64{}}
}

func (f *fakeCache) SetReputation(_ context.Context, sellerID int64, score float64) error {
	f.scores[sellerID] = score
	return nil
}

func (f *fakeCache) GetReputation(_ context.Context, sellerID int64) (float64, bool, error) {
	score, ok := f.scores[sellerID]
	return score, ok, nil
}
