package handler

import (
	"net/http"
	"strconv"
	"time"

	"vetpos/internal/apierror"
	"vetpos/internal/dto"
	"vetpos/internal/repository"
	"vetpos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CustomersHandler struct {
	customers repository.CustomerRepository
	loyalty   service.LoyaltyService
}

func NewCustomersHandler(customers repository.CustomerRepository, loyalty service.LoyaltyService) *CustomersHandler {
	return &CustomersHandler{customers: customers, loyalty: loyalty}
}

// Get godoc
// @Summary      Fetch one customer with pets, rank and current-year spend
// @Tags         customers
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Customer UUID"
// @Success      200  {object} dto.CustomerResponse
// @Failure      404  {object} apierror.APIError
// @Router       /v1/customers/{id} [get]
func (h *CustomersHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid customer id"))
		return
	}

	customer, err := h.customers.FindByIDWithPets(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New("Customer not found"))
		return
	}
	spend, err := h.loyalty.GetSpend(c.Request.Context(), id, time.Now().Year())
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Failed to load spending"))
		return
	}

	pets := make([]dto.PetResponse, 0, len(customer.Pets))
	for _, p := range customer.Pets {
		pets = append(pets, dto.PetResponse{
			ID:      p.ID.String(),
			Name:    p.Name,
			Species: p.Species,
			Breed:   p.Breed,
		})
	}
	rankName := ""
	if customer.MembershipRank != nil {
		rankName = customer.MembershipRank.Name
	}
	c.JSON(http.StatusOK, dto.CustomerResponse{
		ID:            customer.ID.String(),
		Name:          customer.Name,
		Phone:         customer.Phone,
		Email:         customer.Email,
		LoyaltyPoints: customer.LoyaltyPoints,
		Rank:          rankName,
		YearlySpend:   spend,
		Pets:          pets,
	})
}

// Spending godoc
// @Summary      Ledgered spend for one customer and year
// @Tags         customers
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  string true  "Customer UUID"
// @Param        year query int    false "Calendar year (default: current)"
// @Success      200  {object} dto.SpendingResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/customers/{id}/spending [get]
func (h *CustomersHandler) Spending(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid customer id"))
		return
	}
	year := time.Now().Year()
	if raw := c.Query("year"); raw != "" {
		year, err = strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("Invalid year"))
			return
		}
	}

	if _, err := h.customers.FindByID(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusNotFound, apierror.New("Customer not found"))
		return
	}
	spend, err := h.loyalty.GetSpend(c.Request.Context(), id, year)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Failed to load spending"))
		return
	}
	c.JSON(http.StatusOK, dto.SpendingResponse{
		CustomerID: id.String(),
		Year:       year,
		MoneySpent: spend,
	})
}
