package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/temcen/smartdiet/internal/middleware"
	"github.com/temcen/smartdiet/internal/services"
	"github.com/temcen/smartdiet/pkg/models"
)

const (
	// maxBatchSize bounds the profiles accepted in one batch request.
	maxBatchSize     = 50
	batchConcurrency = 8
)

type RecommendationHandler struct {
	recommender services.RecommenderInterface
	logger      *logrus.Logger
}

func NewRecommendationHandler(recommender services.RecommenderInterface, logger *logrus.Logger) *RecommendationHandler {
	return &RecommendationHandler{
		recommender: recommender,
		logger:      logger,
	}
}

// Recommend handles POST /api/v1/recommendations.
func (h *RecommendationHandler) Recommend(c *gin.Context) {
	var req models.RecommendationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, &models.ErrorBody{
			Code:    "INVALID_REQUEST_BODY",
			Message: "Invalid request body format",
			Details: err.Error(),
		})
		return
	}

	fields := requestFields(c)
	h.logger.WithFields(fields).Debug("Recommendation requested")

	resp, err := h.recommender.Recommend(c.Request.Context(), req.Profile, req.Count)
	if err != nil {
		status, body := h.classify(fields, err)
		writeError(c, status, body)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// RecommendBatch handles POST /api/v1/recommendations/batch. A failing
// profile yields an error entry; the other entries are still served.
func (h *RecommendationHandler) RecommendBatch(c *gin.Context) {
	var req models.BatchRecommendationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, &models.ErrorBody{
			Code:    "INVALID_REQUEST_BODY",
			Message: "Invalid request body format",
			Details: err.Error(),
		})
		return
	}

	if len(req.Requests) == 0 || len(req.Requests) > maxBatchSize {
		writeError(c, http.StatusBadRequest, &models.ErrorBody{
			Code:    "INVALID_BATCH_SIZE",
			Message: "Batch must contain between 1 and 50 requests",
		})
		return
	}

	fields := requestFields(c)
	h.logger.WithFields(fields).WithField("size", len(req.Requests)).Debug("Batch recommendation requested")

	responses := make([]models.BatchItemResponse, len(req.Requests))
	g, ctx := errgroup.WithContext(c.Request.Context())
	g.SetLimit(batchConcurrency)

	for i, item := range req.Requests {
		g.Go(func() error {
			resp, err := h.recommender.Recommend(ctx, item.Profile, item.Count)
			if err != nil {
				_, body := h.classify(fields, err)
				responses[i] = models.BatchItemResponse{Error: body}
				return nil
			}
			responses[i] = models.BatchItemResponse{RecommendationResponse: resp}
			return nil
		})
	}
	g.Wait()

	if c.Request.Context().Err() != nil {
		writeError(c, http.StatusServiceUnavailable, &models.ErrorBody{
			Code:    "REQUEST_CANCELLED",
			Message: "Request was cancelled",
		})
		return
	}

	batch := models.BatchRecommendationResponse{Responses: responses}
	c.JSON(http.StatusOK, batch)
}

// DietProfile handles POST /api/v1/diet-profile: inference without scoring.
func (h *RecommendationHandler) DietProfile(c *gin.Context) {
	var profile models.UserProfile
	if err := c.ShouldBindJSON(&profile); err != nil {
		writeError(c, http.StatusBadRequest, &models.ErrorBody{
			Code:    "INVALID_REQUEST_BODY",
			Message: "Invalid request body format",
			Details: err.Error(),
		})
		return
	}

	result, err := h.recommender.InferDietProfile(profile)
	if err != nil {
		status, body := h.classify(requestFields(c), err)
		writeError(c, status, body)
		return
	}

	c.JSON(http.StatusOK, result)
}

// requestFields identifies the caller in log entries. client_id is empty
// when auth is disabled.
func requestFields(c *gin.Context) logrus.Fields {
	clientID, scope := middleware.GetClientFromContext(c)
	return logrus.Fields{
		"request_id": c.GetString("request_id"),
		"client_id":  clientID,
		"scope":      scope,
	}
}

func (h *RecommendationHandler) classify(fields logrus.Fields, err error) (int, *models.ErrorBody) {
	if errors.Is(err, models.ErrInvalidProfile) {
		return http.StatusBadRequest, &models.ErrorBody{
			Code:    "INVALID_PROFILE",
			Message: "Your inputs are invalid",
			Details: err.Error(),
		}
	}

	h.logger.WithFields(fields).WithError(err).Error("Failed to generate recommendations")
	return http.StatusInternalServerError, &models.ErrorBody{
		Code:    "RECOMMENDATION_FAILED",
		Message: "Failed to generate recommendations",
	}
}

func writeError(c *gin.Context, status int, body *models.ErrorBody) {
	c.JSON(status, gin.H{"error": body})
}
