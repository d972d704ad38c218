package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/avetisn/plumb_erp/internal/models"
	"github.com/avetisn/plumb_erp/internal/promo"
)

type PromoHandler struct {
	DB        *gorm.DB
	Evaluator *promo.Evaluator
}

type promoCheckRequest struct {
	PromoCode   string          `json:"promo_code"`
	OrderAmount decimal.Decimal `json:"order_amount"`
}

// Apply previews a promo code against a proposed order amount. The
// dedicated endpoint rejects inapplicable codes; the order path reports
// them without failing instead.
func (h *PromoHandler) Apply(c echo.Context) error {
	if _, err := GetID(c); err != nil {
		return err
	}
	return h.check(c)
}

func (h *PromoHandler) Validate(c echo.Context) error {
	return h.check(c)
}

func (h *PromoHandler) check(c echo.Context) error {
	var req promoCheckRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.PromoCode == "" || req.OrderAmount.IsZero() {
		return echo.NewHTTPError(http.StatusBadRequest, "promo code and order amount are required")
	}

	eval, err := h.Evaluator.Evaluate(c.Request().Context(), req.PromoCode, req.OrderAmount, time.Now())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if !eval.Applicable {
		if eval.Reason == promo.ReasonNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "invalid promo code")
		}
		return echo.NewHTTPError(http.StatusBadRequest, eval.Reason)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"promo_code": echo.Map{
			"code":            eval.Promo.Code,
			"description":     eval.Promo.Description,
			"discount_type":   eval.Promo.DiscountType,
			"discount_value":  eval.Promo.DiscountValue,
			"discount_amount": eval.DiscountAmount,
			"final_amount":    req.OrderAmount.Sub(eval.DiscountAmount),
		},
	})
}

func (h *PromoHandler) Active(c echo.Context) error {
	var promos []models.PromoCode
	if err := h.DB.Where("status = ?", models.PromoStatusActive).Find(&promos).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, promos)
}

func (h *PromoHandler) GetByCode(c echo.Context) error {
	code := c.Param("code")
	var p models.PromoCode
	if err := h.DB.Where("code = ?", code).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "promo code not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, p)
}

type promoUpsertRequest struct {
	Code           string           `json:"code"`
	Description    string           `json:"description"`
	DiscountType   string           `json:"discount_type"`
	DiscountValue  decimal.Decimal  `json:"discount_value"`
	MinOrderAmount *decimal.Decimal `json:"min_order_amount"`
	MaxDiscount    *decimal.Decimal `json:"max_discount"`
	ValidFrom      time.Time        `json:"valid_from"`
	ValidUntil     time.Time        `json:"valid_until"`
	UsageLimit     *int             `json:"usage_limit"`
	Status         string           `json:"status"`
}

func (r *promoUpsertRequest) validate() error {
	if strings.TrimSpace(r.Code) == "" {
		return errors.New("code required")
	}
	if r.DiscountType != models.DiscountTypePercentage && r.DiscountType != models.DiscountTypeFlat {
		return errors.New("discount_type must be percentage or flat")
	}
	if r.DiscountValue.IsNegative() {
		return errors.New("discount_value must be >= 0")
	}
	if !r.ValidUntil.After(r.ValidFrom) {
		return errors.New("valid_until must be after valid_from")
	}
	return nil
}

func (h *PromoHandler) Create(c echo.Context) error {
	var req promoUpsertRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := req.validate(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	status := req.Status
	if status == "" {
		status = models.PromoStatusActive
	}

	p := models.PromoCode{
		Code:           req.Code,
		Description:    req.Description,
		DiscountType:   req.DiscountType,
		DiscountValue:  req.DiscountValue,
		MinOrderAmount: req.MinOrderAmount,
		MaxDiscount:    req.MaxDiscount,
		ValidFrom:      req.ValidFrom,
		ValidUntil:     req.ValidUntil,
		UsageLimit:     req.UsageLimit,
		Status:         status,
	}
	if err := h.DB.Create(&p).Error; err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *PromoHandler) Deactivate(c echo.Context) error {
	code := c.Param("code")
	res := h.DB.Model(&models.PromoCode{}).Where("code = ?", code).Update("status", models.PromoStatusInactive)
	if res.Error != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, res.Error.Error())
	}
	if res.RowsAffected == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "promo code not found")
	}
	return c.NoContent(http.StatusNoContent)
}
