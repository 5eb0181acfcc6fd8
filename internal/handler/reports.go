package handler

import (
	"net/http"
	"time"

	"vetpos/internal/apierror"
	"vetpos/internal/middleware"
	"vetpos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ReportsHandler struct{ svc service.ReportService }

func NewReportsHandler(svc service.ReportService) *ReportsHandler {
	return &ReportsHandler{svc: svc}
}

// DailyBranch godoc
// @Summary      Daily revenue report for one branch
// @Description  Revenue, receipt count, distinct customers, top receptionists and top items for one day. Only completed receipts count.
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Param        branch_id query string true  "Branch UUID"
// @Param        date      query string false "YYYY-MM-DD (default: today)"
// @Success      200  {object} dto.DailyBranchReport
// @Failure      400  {object} apierror.APIError
// @Router       /v1/reports/daily [get]
func (h *ReportsHandler) DailyBranch(c *gin.Context) {
	branchID, err := uuid.Parse(c.Query("branch_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid branch id"))
		return
	}
	date, ok := parseDateOrToday(c)
	if !ok {
		return
	}

	resp, err := h.svc.DailyBranch(c.Request.Context(), branchID, date)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Failed to build report"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Dashboard godoc
// @Summary      Manager dashboard
// @Description  Today's revenue for the caller's branch plus the year's monthly revenue across all branches.
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Param        date query string false "YYYY-MM-DD (default: today)"
// @Success      200  {object} dto.DashboardReport
// @Failure      400  {object} apierror.APIError
// @Router       /v1/reports/dashboard [get]
func (h *ReportsHandler) Dashboard(c *gin.Context) {
	claims := middleware.GetClaims(c)
	branchID, err := branchFromClaims(claims)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Staff member has no branch assigned"))
		return
	}
	date, ok := parseDateOrToday(c)
	if !ok {
		return
	}

	resp, err := h.svc.Dashboard(c.Request.Context(), branchID, date)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Failed to build report"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func parseDateOrToday(c *gin.Context) (time.Time, bool) {
	raw := c.Query("date")
	if raw == "" {
		return time.Now(), true
	}
	date, err := time.Parse("2006-01-02", raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid date, expected YYYY-MM-DD"))
		return time.Time{}, false
	}
	return date, true
}
