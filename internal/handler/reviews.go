package handler

import (
	"net/http"
	"strconv"

	"vetpos/internal/apierror"
	"vetpos/internal/service"
	"vetpos/internal/worker"

	"github.com/gin-gonic/gin"
)

type ReviewsHandler struct {
	svc        service.ReviewService
	dispatcher *worker.Dispatcher
}

func NewReviewsHandler(svc service.ReviewService, dispatcher *worker.Dispatcher) *ReviewsHandler {
	return &ReviewsHandler{svc: svc, dispatcher: dispatcher}
}

// Run godoc
// @Summary      Run the yearly membership review synchronously
// @Description  Classifies every customer's ledgered spend for the given year against the rank table and updates ranks. Director only.
// @Tags         reviews
// @Produce      json
// @Security     BearerAuth
// @Param        year path int true "Review year"
// @Success      200  {object} dto.ReviewResult
// @Failure      400  {object} apierror.APIError
// @Failure      500  {object} apierror.APIError
// @Router       /v1/admin/reviews/{year}/run [post]
func (h *ReviewsHandler) Run(c *gin.Context) {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil || year < 2000 || year > 2200 {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid year"))
		return
	}

	result, err := h.svc.Run(c.Request.Context(), year)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Enqueue godoc
// @Summary      Queue the yearly membership review
// @Description  Enqueues the review as a background job; the summary is emailed to the operations address when it finishes.
// @Tags         reviews
// @Produce      json
// @Security     BearerAuth
// @Param        year path int true "Review year"
// @Success      202  {object} map[string]string
// @Failure      400  {object} apierror.APIError
// @Router       /v1/admin/reviews/{year} [post]
func (h *ReviewsHandler) Enqueue(c *gin.Context) {
	yearStr := c.Param("year")
	year, err := strconv.Atoi(yearStr)
	if err != nil || year < 2000 || year > 2200 {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid year"))
		return
	}

	if err := h.dispatcher.EnqueueReview(c.Request.Context(), worker.ReviewJobPayload{Year: yearStr}); err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Failed to enqueue review"))
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "queued", "year": yearStr})
}
