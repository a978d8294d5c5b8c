package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"trustflow-service/internal/auth"
	"trustflow-service/internal/errs"
	"trustflow-service/internal/models"
	"trustflow-service/internal/redisclient"
	"trustflow-service/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler contains HTTP handlers
type Handler struct {
	listingService *service.ListingService
	orderService   *service.OrderService
	reviewService  *service.ReviewService
	userService    *service.UserService
	authenticator  *auth.Authenticator
	redis          *redisclient.Client
	rateLimit      int
}

// NewHandler creates a new HTTP handler
func NewHandler(
	listingService *service.ListingService,
	orderService *service.OrderService,
	reviewService *service.ReviewService,
	userService *service.UserService,
	authenticator *auth.Authenticator,
	redis *redisclient.Client,
	rateLimit int,
) *Handler {
	return &Handler{
		listingService: listingService,
		orderService:   orderService,
		reviewService:  reviewService,
		userService:    userService,
		authenticator:  authenticator,
		redis:          redis,
		rateLimit:      rateLimit,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	if h.redis != nil {
		v1.Use(rateLimitMiddleware(h.redis, h.rateLimit))
	}

	v1.GET("/listings", h.listListings)

	authed := v1.Group("")
	authed.Use(authMiddleware(h.authenticator))
	{
		authed.POST("/listings", h.createListing)
		authed.POST("/listings/analyze", h.analyzeListing)

		authed.POST("/orders", h.placeOrder)
		authed.GET("/orders/:id", h.getOrder)
		authed.POST("/orders/:id/ship", h.markShipped)
		authed.POST("/orders/:id/confirm", h.confirmDelivery)
		authed.POST("/orders/:id/dispute", h.raiseDispute)
		authed.POST("/orders/:id/release", h.releaseManualReview)

		authed.POST("/reviews", h.recordReview)

		authed.GET("/users/me", h.me)
		authed.POST("/users/tier", h.upgradeTier)
		authed.GET("/users/carriers", h.listCarriers)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// respondError maps service errors to HTTP status codes.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, errs.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, errs.ErrUnauthorized):
		status = http.StatusForbidden
	case errors.Is(err, errs.ErrInvalidState):
		status = http.StatusConflict
	case errors.Is(err, errs.ErrExternalService):
		status = http.StatusBadGateway
	}

	c.JSON(status, gin.H{
		"error": err.Error(),
	})
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid ID",
		})
		return 0, false
	}
	return id, true
}

// createListing handles listing creation
func (h *Handler) createListing(c *gin.Context) {
	var req service.CreateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	listing, err := h.listingService.CreateListing(c.Request.Context(), identityFrom(c), c.ClientIP(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, listing)
}

// analyzeListing previews a trust assessment without creating anything
func (h *Handler) analyzeListing(c *gin.Context) {
	var req service.CreateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	assessment, err := h.listingService.Analyze(c.Request.Context(), identityFrom(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, assessment)
}

// listListings handles the public listing search
func (h *Handler) listListings(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	listings, err := h.listingService.ListListings(c.Request.Context(), c.Query("q"), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"listings": listings,
	})
}

// placeOrder handles order creation
func (h *Handler) placeOrder(c *gin.Context) {
	var req service.PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	order, err := h.orderService.PlaceOrder(c.Request.Context(), identityFrom(c), c.ClientIP(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, order)
}

// getOrder handles get order by ID
func (h *Handler) getOrder(c *gin.Context) {
	orderID, ok := pathID(c)
	if !ok {
		return
	}

	order, err := h.orderService.GetOrder(c.Request.Context(), identityFrom(c), orderID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

// markShipped handles the carrier shipping confirmation
func (h *Handler) markShipped(c *gin.Context) {
	h.transition(c, h.orderService.MarkShipped)
}

// confirmDelivery completes an order and releases escrow
func (h *Handler) confirmDelivery(c *gin.Context) {
	h.transition(c, h.orderService.ConfirmDelivery)
}

// raiseDispute freezes an order pending manual resolution
func (h *Handler) raiseDispute(c *gin.Context) {
	h.transition(c, h.orderService.RaiseDispute)
}

// releaseManualReview returns a flagged order to the normal flow
func (h *Handler) releaseManualReview(c *gin.Context) {
	h.transition(c, h.orderService.ReleaseManualReview)
}

// transition runs a single order state change and writes the result.
func (h *Handler) transition(
	c *gin.Context,
	fn func(ctx context.Context, actor auth.Identity, origin string, orderID int64) (*models.Order, error),
) {
	orderID, ok := pathID(c)
	if !ok {
		return
	}

	order, err := fn(c.Request.Context(), identityFrom(c), c.ClientIP(), orderID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

// recordReview handles review creation
func (h *Handler) recordReview(c *gin.Context) {
	var req service.RecordReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	review, err := h.reviewService.RecordReview(c.Request.Context(), identityFrom(c), c.ClientIP(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, review)
}

// me returns the caller's own profile
func (h *Handler) me(c *gin.Context) {
	user, err := h.userService.Me(c.Request.Context(), identityFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// upgradeTier handles the simulated membership upgrade
func (h *Handler) upgradeTier(c *gin.Context) {
	var req service.UpgradeTierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	user, err := h.userService.UpgradeTier(c.Request.Context(), identityFrom(c), c.ClientIP(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// listCarriers returns the carriers available at checkout
func (h *Handler) listCarriers(c *gin.Context) {
	carriers, err := h.userService.ListCarriers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"carriers": carriers,
	})
}
