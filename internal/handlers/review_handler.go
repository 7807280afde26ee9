package handlers

import (
	"storefront/internal/middleware"
	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
)

// ReviewHandler handles HTTP requests for product reviews.
type ReviewHandler struct {
	service *services.ReviewService
}

// NewReviewHandler creates a new ReviewHandler.
func NewReviewHandler(service *services.ReviewService) *ReviewHandler {
	return &ReviewHandler{service: service}
}

// RegisterRoutes registers the review routes. Listing a product's reviews is public.
func (h *ReviewHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	router.Get("/products/:id/reviews", h.HandleGetProductReviews)
	router.Post("/products/:id/reviews", auth, h.HandleAddReview)
	router.Patch("/reviews/:id", auth, h.HandleUpdateReview)
	router.Delete("/reviews/:id", auth, h.HandleDeleteReview)
	router.Get("/me/reviews", auth, h.HandleGetMyReviews)
}

// RegisterAdminRoutes registers review moderation under an admin-only router.
func (h *ReviewHandler) RegisterAdminRoutes(admin fiber.Router) {
	admin.Get("/reviews", h.HandleGetAllReviews)
}

// ReviewRequest represents the request body for writing or editing a review.
type ReviewRequest struct {
	Rating  int    `json:"rating" validate:"min=1,max=5"`
	Comment string `json:"comment" validate:"max=2000"`
}

// HandleGetProductReviews lists the reviews of a product, newest first.
func (h *ReviewHandler) HandleGetProductReviews(c *fiber.Ctx) error {
	reviews, err := h.service.GetProductReviews(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(reviews)
}

// HandleAddReview reviews a product the caller has ordered.
func (h *ReviewHandler) HandleAddReview(c *fiber.Ctx) error {
	var req ReviewRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}
	user := middleware.CurrentUser(c)
	review, err := h.service.AddReview(c.UserContext(), services.AddReviewInput{
		ProductID: c.Params("id"),
		UserID:    user.ID,
		UserName:  user.Name,
		Rating:    req.Rating,
		Comment:   req.Comment,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(review)
}

// HandleUpdateReview edits a review owned by the caller, or any review for admins.
func (h *ReviewHandler) HandleUpdateReview(c *fiber.Ctx) error {
	var req ReviewRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}
	review, err := h.service.UpdateReview(c.UserContext(), middleware.CurrentUser(c), c.Params("id"), req.Rating, req.Comment)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(review)
}

// HandleDeleteReview deletes a review owned by the caller, or any review for admins.
func (h *ReviewHandler) HandleDeleteReview(c *fiber.Ctx) error {
	if err := h.service.DeleteReview(c.UserContext(), middleware.CurrentUser(c), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleGetMyReviews lists the caller's reviews.
func (h *ReviewHandler) HandleGetMyReviews(c *fiber.Ctx) error {
	reviews, err := h.service.GetUserReviews(c.UserContext(), middleware.CurrentUser(c).ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(reviews)
}

// HandleGetAllReviews lists every review with product and reviewer details.
func (h *ReviewHandler) HandleGetAllReviews(c *fiber.Ctx) error {
	reviews, err := h.service.GetAllReviews(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(reviews)
}
