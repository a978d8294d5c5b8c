package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"trustflow-service/internal/errs"
	"trustflow-service/internal/models"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

type Store struct {
	db *sqlx.DB
}

// NewStore creates a new database store
func NewStore(databaseURL string) (*Store, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// GetUserByID retrieves a user by ID
func (s *Store) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	err := s.db.GetContext(ctx, &user, "SELECT * FROM users WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user %d: %w", id, errs.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateUserTier updates a user's membership tier
func (s *Store) UpdateUserTier(ctx context.Context, userID int64, tier string) (*models.User, error) {
	var user models.User
	err := s.db.GetContext(ctx, &user,
		"UPDATE users SET tier = $1 WHERE id = $2 RETURNING *", tier, userID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user %d: %w", userID, errs.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ListCarriers retrieves all users with the carrier role
func (s *Store) ListCarriers(ctx context.Context) ([]models.User, error) {
	var carriers []models.User
	err := s.db.SelectContext(ctx, &carriers,
		"SELECT * FROM users WHERE role = $1 ORDER BY id", models.RoleCarrier)
	return carriers, err
}

// CreateListing creates a new listing with its trust score already stamped
func (s *Store) CreateListing(ctx context.Context, listing *models.Listing) error {
	query := `
		INSERT INTO listings (seller_id, title, description, price, category, trust_score, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	return s.db.GetContext(ctx, listing, query,
		listing.SellerID, listing.Title, listing.Description, listing.Price,
		listing.Category, listing.TrustScore, listing.Status)
}

// GetListingByID retrieves a listing by ID
func (s *Store) GetListingByID(ctx context.Context, id int64) (*models.Listing, error) {
	var listing models.Listing
	err := s.db.GetContext(ctx, &listing, "SELECT * FROM listings WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("listing %d: %w", id, errs.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &listing, nil
}

// ListActiveListings retrieves active listings, optionally filtered by a
// case-insensitive match on title or description
func (s *Store) ListActiveListings(ctx context.Context, q string, limit, offset int) ([]models.Listing, error) {
	listings := []models.Listing{}

	if q == "" {
		err := s.db.SelectContext(ctx, &listings,
			"SELECT * FROM listings WHERE status = $1 ORDER BY id LIMIT $2 OFFSET $3",
			models.ListingStatusActive, limit, offset)
		return listings, err
	}

	search := "%" + q + "%"
	err := s.db.SelectContext(ctx, &listings,
		`SELECT * FROM listings
		 WHERE status = $1 AND (title ILIKE $2 OR description ILIKE $2)
		 ORDER BY id LIMIT $3 OFFSET $4`,
		models.ListingStatusActive, search, limit, offset)
	return listings, err
}
