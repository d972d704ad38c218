package handlers

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/avetisn/plumb_erp/internal/models"
	"github.com/avetisn/plumb_erp/internal/promo"
)

func TestValidatePromo(t *testing.T) {
	db := InitTestDB(t)
	seedActivePromo(t, db)

	handler := PromoHandler{DB: db, Evaluator: &promo.Evaluator{DB: db}}

	e := echo.New()
	c, rec := newJSONContext(e, http.MethodPost, "/promo/validate", map[string]any{
		"promo_code":   "SAVE10",
		"order_amount": "200.00",
	})

	require.NoError(t, handler.Validate(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		PromoCode struct {
			Code           string          `json:"code"`
			DiscountAmount decimal.Decimal `json:"discount_amount"`
			FinalAmount    decimal.Decimal `json:"final_amount"`
		} `json:"promo_code"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "SAVE10", resp.PromoCode.Code)
	require.True(t, resp.PromoCode.DiscountAmount.Equal(decimal.RequireFromString("20")))
	require.True(t, resp.PromoCode.FinalAmount.Equal(decimal.RequireFromString("180")))
}

func TestValidatePromoUnknownCode(t *testing.T) {
	db := InitTestDB(t)

	handler := PromoHandler{DB: db, Evaluator: &promo.Evaluator{DB: db}}

	e := echo.New()
	c, _ := newJSONContext(e, http.MethodPost, "/promo/validate", map[string]any{
		"promo_code":   "NOPE",
		"order_amount": "100.00",
	})

	err := handler.Validate(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError")
	require.Equal(t, http.StatusNotFound, he.Code)
}

func TestValidatePromoInactiveCode(t *testing.T) {
	db := InitTestDB(t)
	p := models.PromoCode{
		Code:          "OLD",
		DiscountType:  models.DiscountTypeFlat,
		DiscountValue: decimal.RequireFromString("5"),
		ValidFrom:     time.Now().Add(-time.Hour),
		ValidUntil:    time.Now().Add(time.Hour),
		Status:        models.PromoStatusInactive,
	}
	require.NoError(t, db.Create(&p).Error)

	handler := PromoHandler{DB: db, Evaluator: &promo.Evaluator{DB: db}}

	e := echo.New()
	c, _ := newJSONContext(e, http.MethodPost, "/promo/validate", map[string]any{
		"promo_code":   "OLD",
		"order_amount": "100.00",
	})

	err := handler.Validate(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError")
	require.Equal(t, http.StatusBadRequest, he.Code)
}

func TestApplyPromoRequiresAuth(t *testing.T) {
	db := InitTestDB(t)
	seedActivePromo(t, db)

	handler := PromoHandler{DB: db, Evaluator: &promo.Evaluator{DB: db}}

	e := echo.New()
	c, _ := newJSONContext(e, http.MethodPost, "/promo/apply", map[string]any{
		"promo_code":   "SAVE10",
		"order_amount": "200.00",
	})

	err := handler.Apply(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError")
	require.Equal(t, http.StatusUnauthorized, he.Code)
}

func TestCreatePromo(t *testing.T) {
	db := InitTestDB(t)

	handler := PromoHandler{DB: db, Evaluator: &promo.Evaluator{DB: db}}

	e := echo.New()
	c, rec := newJSONContext(e, http.MethodPost, "/admin/promo", map[string]any{
		"code":           "SPRING",
		"discount_type":  "flat",
		"discount_value": "25",
		"valid_from":     time.Now().Add(-time.Hour).Format(time.RFC3339),
		"valid_until":    time.Now().Add(24 * time.Hour).Format(time.RFC3339),
	})

	require.NoError(t, handler.Create(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var stored models.PromoCode
	require.NoError(t, db.Where("code = ?", "SPRING").First(&stored).Error)
	require.Equal(t, models.PromoStatusActive, stored.Status)
	require.Equal(t, 0, stored.UsedCount)
}

func TestCreatePromoRejectsBadType(t *testing.T) {
	db := InitTestDB(t)

	handler := PromoHandler{DB: db, Evaluator: &promo.Evaluator{DB: db}}

	e := echo.New()
	c, _ := newJSONContext(e, http.MethodPost, "/admin/promo", map[string]any{
		"code":           "BROKEN",
		"discount_type":  "bogus",
		"discount_value": "25",
		"valid_from":     time.Now().Format(time.RFC3339),
		"valid_until":    time.Now().Add(time.Hour).Format(time.RFC3339),
	})

	err := handler.Create(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError")
	require.Equal(t, http.StatusBadRequest, he.Code)
}

func TestDeactivatePromo(t *testing.T) {
	db := InitTestDB(t)
	seedActivePromo(t, db)

	handler := PromoHandler{DB: db, Evaluator: &promo.Evaluator{DB: db}}

	e := echo.New()
	c, rec := newJSONContext(e, http.MethodDelete, "/admin/promo/SAVE10", nil)
	c.SetParamNames("code")
	c.SetParamValues("SAVE10")

	require.NoError(t, handler.Deactivate(c))
	require.Equal(t, http.StatusNoContent, rec.Code)

	var stored models.PromoCode
	require.NoError(t, db.Where("code = ?", "SAVE10").First(&stored).Error)
	require.Equal(t, models.PromoStatusInactive, stored.Status)
}
