package models

import "time"

// User roles
const (
	RoleBuyer   = "buyer"
	RoleSeller  = "seller"
	RoleCarrier = "carrier"
	RoleAdmin   = "admin"
)

// Membership tiers
const (
	TierBronze   = "Bronze"
	TierSilver   = "Silver"
	TierGold     = "Gold"
	TierPlatinum = "Platinum"
)

// Listing statuses
const (
	ListingStatusActive   = "active"
	ListingStatusSold     = "sold"
	ListingStatusInactive = "inactive"
)

// Order statuses
const (
	OrderStatusPending      = "pending"
	OrderStatusManualReview = "manual_review"
	OrderStatusShipped      = "shipped"
	OrderStatusDisputed     = "disputed"
	OrderStatusCompleted    = "completed"
)

// Escrow statuses
const (
	EscrowStatusHeld             = "held"
	EscrowStatusFrozen           = "frozen"
	EscrowStatusReleasedToSeller = "released_to_seller"
	EscrowStatusReleasedToBuyer  = "released_to_buyer"
	EscrowStatusDisputed         = "disputed"
)

// Risk levels produced by trust scoring
const (
	RiskLevelLow      = "Low"
	RiskLevelMedium   = "Medium"
	RiskLevelHigh     = "High"
	RiskLevelCritical = "Critical"
)

// User represents a marketplace participant. Reputation is written only by
// the review pipeline.
type User struct {
	ID              int64     `db:"id" json:"id"`
	Email           string    `db:"email" json:"email"`
	Role            string    `db:"role" json:"role"`
	KYCStatus       string    `db:"kyc_status" json:"kyc_status"`
	ReputationScore float64   `db:"reputation_score" json:"reputation_score"`
	Tier            string    `db:"tier" json:"tier"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

// Listing represents a product listed for sale. Price is in cents.
// TrustScore is stamped once at creation time.
type Listing struct {
	ID          int64     `db:"id" json:"id"`
	SellerID    int64     `db:"seller_id" json:"seller_id"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	Price       int64     `db:"price" json:"price"`
	Category    string    `db:"category" json:"category"`
	TrustScore  *int64    `db:"trust_score" json:"trust_score"`
	Status      string    `db:"status" json:"status"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Order represents an escrow-backed purchase. All amounts are in cents and
// PlatformFee + NetAmount always equals TotalAmount.
type Order struct {
	ID           int64      `db:"id" json:"id"`
	BuyerID      int64      `db:"buyer_id" json:"buyer_id"`
	SellerID     int64      `db:"seller_id" json:"seller_id"`
	CarrierID    int64      `db:"carrier_id" json:"carrier_id"`
	ListingID    int64      `db:"listing_id" json:"listing_id"`
	TotalAmount  int64      `db:"total_amount" json:"total_amount"`
	PlatformFee  int64      `db:"platform_fee" json:"platform_fee"`
	NetAmount    int64      `db:"net_amount" json:"net_amount"`
	EscrowStatus string     `db:"escrow_status" json:"escrow_status"`
	OrderStatus  string     `db:"order_status" json:"order_status"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	CompletedAt  *time.Time `db:"completed_at" json:"completed_at,omitempty"`
}

// Review is a buyer's rating of a completed purchase. One per order,
// immutable once written.
type Review struct {
	ID         int64     `db:"id" json:"id"`
	OrderID    int64     `db:"order_id" json:"order_id"`
	ReviewerID int64     `db:"reviewer_id" json:"reviewer_id"`
	RevieweeID int64     `db:"reviewee_id" json:"reviewee_id"`
	Rating     int       `db:"rating" json:"rating"`
	Comment    string    `db:"comment" json:"comment"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// AuditLog records a sensitive action after the underlying state change
// committed.
type AuditLog struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	Action    string    `db:"action" json:"action"`
	IPAddress string    `db:"ip_address" json:"ip_address"`
	Timestamp time.Time `db:"timestamp" json:"timestamp"`
}

// TrustAssessment is the transient result of scoring a listing. Only
// TrustScore is persisted, copied onto the listing.
type TrustAssessment struct {
	TrustScore        int      `json:"trust_score"`
	RiskLevel         string   `json:"risk_level"`
	RedFlags          []string `json:"red_flags"`
	Reasoning         string   `json:"reasoning"`
	RecommendedEscrow bool     `json:"recommended_escrow"`
}

// ValidTier reports whether tier is one of the known membership levels.
func ValidTier(tier string) bool {
	switch tier {
	case TierBronze, TierSilver, TierGold, TierPlatinum:
		return true
	}
	return false
}

// ValidRiskLevel reports whether level is one of the four scoring levels.
func ValidRiskLevel(level string) bool {
	switch level {
	case RiskLevelLow, RiskLevelMedium, RiskLevelHigh, RiskLevelCritical:
		return true
	}
	return false
}
