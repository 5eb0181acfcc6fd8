package handler

import (
	"errors"
	"net/http"
	"strconv"

	"vetpos/internal/apierror"
	"vetpos/internal/dto"
	"vetpos/internal/middleware"
	"vetpos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ReceiptsHandler struct{ svc service.ReceiptService }

func NewReceiptsHandler(svc service.ReceiptService) *ReceiptsHandler {
	return &ReceiptsHandler{svc: svc}
}

// CreateDraft godoc
// @Summary      Open a draft receipt
// @Description  Creates an empty draft receipt at the staff member's branch. Customer is optional (walk-in).
// @Tags         receipts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CreateDraftRequest true "Draft details"
// @Success      201  {object} dto.ReceiptResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/receipts [post]
func (h *ReceiptsHandler) CreateDraft(c *gin.Context) {
	var req dto.CreateDraftRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	staffID, _ := uuid.Parse(claims.StaffID)
	branchID, err := branchFromClaims(claims)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Staff member has no branch assigned"))
		return
	}

	resp, err := h.svc.CreateDraft(c.Request.Context(), branchID, staffID, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// AddItem godoc
// @Summary      Add a line item to a draft receipt
// @Description  Resolves the item against the catalogs, snapshots the unit price and recomputes the total. Vaccine doses must go through the dedicated dose endpoint.
// @Tags         receipts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string             true "Receipt UUID"
// @Param        body body dto.AddItemRequest true "Item reference"
// @Success      201  {object} map[string]int
// @Failure      400  {object} apierror.APIError
// @Failure      409  {object} apierror.APIError
// @Router       /v1/receipts/{id}/items [post]
func (h *ReceiptsHandler) AddItem(c *gin.Context) {
	receiptID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid receipt id"))
		return
	}
	var req dto.AddItemRequest
	if !bindAndValidate(c, &req) {
		return
	}

	itemNo, err := h.svc.AddItem(c.Request.Context(), receiptID, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"item_no": itemNo})
}

// AddVaccineDose godoc
// @Summary      Add a vaccine dose to a draft receipt
// @Tags         receipts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string                    true "Receipt UUID"
// @Param        body body dto.AddVaccineDoseRequest true "Vaccine and pet"
// @Success      201  {object} map[string]int
// @Failure      400  {object} apierror.APIError
// @Router       /v1/receipts/{id}/vaccine-doses [post]
func (h *ReceiptsHandler) AddVaccineDose(c *gin.Context) {
	receiptID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid receipt id"))
		return
	}
	var req dto.AddVaccineDoseRequest
	if !bindAndValidate(c, &req) {
		return
	}
	vaccineID, _ := uuid.Parse(req.VaccineID)
	petID, _ := uuid.Parse(req.PetID)

	itemNo, err := h.svc.AddVaccineDose(c.Request.Context(), receiptID, vaccineID, petID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"item_no": itemNo})
}

// RemoveItem godoc
// @Summary      Remove a line item from a draft receipt
// @Tags         receipts
// @Produce      json
// @Security     BearerAuth
// @Param        id      path string true "Receipt UUID"
// @Param        itemNo  path int    true "Line item number"
// @Success      204
// @Failure      404  {object} apierror.APIError
// @Failure      409  {object} apierror.APIError
// @Router       /v1/receipts/{id}/items/{itemNo} [delete]
func (h *ReceiptsHandler) RemoveItem(c *gin.Context) {
	receiptID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid receipt id"))
		return
	}
	itemNo, err := strconv.Atoi(c.Param("itemNo"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid item number"))
		return
	}

	if err := h.svc.RemoveItem(c.Request.Context(), receiptID, itemNo); err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UpdateItemQuantity godoc
// @Summary      Change the quantity of a line item on a draft receipt
// @Tags         receipts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path string                    true "Receipt UUID"
// @Param        itemNo  path int                       true "Line item number"
// @Param        body    body dto.UpdateQuantityRequest true "New quantity"
// @Success      204
// @Failure      400  {object} apierror.APIError
// @Failure      404  {object} apierror.APIError
// @Router       /v1/receipts/{id}/items/{itemNo} [patch]
func (h *ReceiptsHandler) UpdateItemQuantity(c *gin.Context) {
	receiptID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid receipt id"))
		return
	}
	itemNo, err := strconv.Atoi(c.Param("itemNo"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid item number"))
		return
	}
	var req dto.UpdateQuantityRequest
	if !bindAndValidate(c, &req) {
		return
	}

	if err := h.svc.UpdateItemQuantity(c.Request.Context(), receiptID, itemNo, req.Quantity); err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Complete godoc
// @Summary      Complete a draft receipt
// @Description  Finalizes the receipt, credits the customer's yearly spending ledger and loyalty points, and emails the receipt if the customer has an address on file.
// @Tags         receipts
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Receipt UUID"
// @Success      200  {object} dto.ReceiptResponse
// @Failure      404  {object} apierror.APIError
// @Failure      409  {object} apierror.APIError
// @Router       /v1/receipts/{id}/complete [post]
func (h *ReceiptsHandler) Complete(c *gin.Context) {
	receiptID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid receipt id"))
		return
	}

	resp, err := h.svc.Complete(c.Request.Context(), receiptID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Get godoc
// @Summary      Fetch one receipt with its line items
// @Tags         receipts
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Receipt UUID"
// @Success      200  {object} dto.ReceiptResponse
// @Failure      404  {object} apierror.APIError
// @Router       /v1/receipts/{id} [get]
func (h *ReceiptsHandler) Get(c *gin.Context) {
	receiptID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid receipt id"))
		return
	}
	resp, err := h.svc.GetByID(c.Request.Context(), receiptID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// List godoc
// @Summary      List receipts
// @Tags         receipts
// @Produce      json
// @Security     BearerAuth
// @Param        status    query string false "draft | completed | all"
// @Param        branch_id query string false "Branch UUID"
// @Param        page      query int    false "Page (default 1)"
// @Param        limit     query int    false "Rows per page (default 20)"
// @Success      200  {object} dto.ReceiptListResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/receipts [get]
func (h *ReceiptsHandler) List(c *gin.Context) {
	var filter dto.ReceiptFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	resp, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Failed to list receipts"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func branchFromClaims(claims *middleware.JWTClaims) (uuid.UUID, error) {
	if claims.BranchID == nil {
		return uuid.Nil, errors.New("no branch in token")
	}
	return uuid.Parse(*claims.BranchID)
}
