package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pricelens/engine/internal/domain"
	"github.com/pricelens/engine/internal/usecase"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	offers  *usecase.OfferService
	matcher *usecase.Matcher
}

// NewHandler creates a new HTTP handler
func NewHandler(offers *usecase.OfferService, matcher *usecase.Matcher) *Handler {
	return &Handler{offers: offers, matcher: matcher}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "pricelens-engine",
		"version": "1.0.0",
	})
}

// EvaluateRequest is the payload for offer evaluation
type EvaluateRequest struct {
	Target           domain.TargetProduct   `json:"target" binding:"required"`
	Variant          domain.Variant         `json:"variant"`
	Candidates       []domain.CandidateText `json:"candidates" binding:"required"`
	ComparisonPrices []float64              `json:"comparisonPrices"`
}

// EvaluateOffers runs the full extraction/matching/scoring pipeline over a
// batch of candidate texts and returns the confidence report
func (h *Handler) EvaluateOffers(c *gin.Context) {
	if h.offers == nil {
		c.JSON(http.StatusNotImplemented, gin.H{
			"error": "Offer evaluation not configured",
		})
		return
	}

	var req EvaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	report, err := h.offers.EvaluateBatch(c.Request.Context(), req.Target, req.Variant, req.Candidates, req.ComparisonPrices)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidRequest):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Target brand and model are required",
			})
		case errors.Is(err, domain.ErrNoCandidates):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "At least one candidate text is required",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Evaluation failed",
			})
		}
		return
	}

	c.JSON(http.StatusOK, report)
}

// MatchRequest is the payload for a standalone fuzzy-match score
type MatchRequest struct {
	Candidate domain.CandidateText `json:"candidate" binding:"required"`
	Target    domain.TargetProduct `json:"target" binding:"required"`
	Variant   domain.Variant       `json:"variant"`
}

// MatchScore scores a single candidate text against a target without running
// the rest of the pipeline
func (h *Handler) MatchScore(c *gin.Context) {
	if h.matcher == nil {
		c.JSON(http.StatusNotImplemented, gin.H{
			"error": "Matching not configured",
		})
		return
	}

	var req MatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	score := h.matcher.FuzzyMatchPhone(req.Candidate, req.Target, req.Variant)
	c.JSON(http.StatusOK, gin.H{
		"score": score,
		"level": usecase.ClassifyConfidenceLevel(score),
	})
}
