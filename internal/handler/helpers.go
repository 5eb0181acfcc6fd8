package handler

import (
	"errors"
	"net/http"
	"reflect"

	"vetpos/internal/apierror"
	"vetpos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails —
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid JSON: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		fields := make(map[string]string)
		for _, fe := range err.(validator.ValidationErrors) {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// writeServiceError maps billing core sentinels onto HTTP statuses. Unknown
// errors become opaque 500s; the details stay in the logs.
func writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrReceiptNotFound),
		errors.Is(err, service.ErrItemNotFound),
		errors.Is(err, service.ErrItemRefNotFound),
		errors.Is(err, service.ErrCustomerNotFound),
		errors.Is(err, service.ErrPetNotFound):
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
	case errors.Is(err, service.ErrReceiptAlreadyCompleted):
		c.JSON(http.StatusConflict, apierror.New(err.Error()))
	case errors.Is(err, service.ErrPetRequired),
		errors.Is(err, service.ErrCustomerRequired),
		errors.Is(err, service.ErrInvalidQuantity),
		errors.Is(err, service.ErrUseVaccinationLookup),
		errors.Is(err, service.ErrInsufficientStock):
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
	case errors.Is(err, service.ErrRankTableEmpty):
		// Misconfiguration, not a caller error.
		c.JSON(http.StatusInternalServerError, apierror.New(err.Error()))
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, apierror.New("Internal server error"))
	}
}
