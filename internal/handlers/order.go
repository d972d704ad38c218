package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/avetisn/plumb_erp/internal/mykafka"
	"github.com/avetisn/plumb_erp/internal/order"
	"github.com/avetisn/plumb_erp/internal/util"
)

type OrderHandler struct {
	Svc      *order.Service
	Producer *mykafka.Producer
}

func (h *OrderHandler) publish(c echo.Context, key string, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, mykafka.TopicOrderEvents, key, event); err != nil {
		c.Logger().Errorf("Kafka publish error: %v", err)
	}
}

func orderStatus(err error) int {
	switch {
	case errors.Is(err, order.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, order.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, order.ErrInsufficientStock), errors.Is(err, order.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// PlaceOrder handles POST /orders. A failed placement leaves stock and
// promo usage untouched, so the caller may retry with adjusted quantities.
func (h *OrderHandler) PlaceOrder(c echo.Context) error {
	userID, err := GetID(c)
	if err != nil {
		return err
	}

	var req struct {
		Items     []order.ItemRequest `json:"items"`
		PromoCode string              `json:"promo_code"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	placed, err := h.Svc.PlaceOrder(c.Request().Context(), userID, req.Items, req.PromoCode)
	if err != nil {
		return echo.NewHTTPError(orderStatus(err), err.Error())
	}

	h.publish(c, fmt.Sprint(userID), map[string]any{
		"type":    "order_created",
		"userID":  userID,
		"orderID": placed.Order.ID,
		"total":   placed.Pricing.Total,
	})

	return c.JSON(http.StatusCreated, placed)
}

// UpdateStatus is the admin path that completes or cancels a pending
// order. Warranty cards only issue from completed orders.
func (h *OrderHandler) UpdateStatus(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid order id")
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	o, err := h.Svc.UpdateStatus(c.Request().Context(), uint(id), req.Status)
	if err != nil {
		return echo.NewHTTPError(orderStatus(err), err.Error())
	}

	h.publish(c, fmt.Sprint(o.UserID), map[string]any{
		"type":    "order_status_updated",
		"orderID": o.ID,
		"status":  o.Status,
	})

	return c.JSON(http.StatusOK, o)
}

func (h *OrderHandler) MyOrders(c echo.Context) error {
	userID, err := GetID(c)
	if err != nil {
		return err
	}

	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	total, orders, err := h.Svc.MyOrders(c.Request().Context(), userID, offset, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"data": orders,
		"meta": echo.Map{
			"page":  page,
			"size":  limit,
			"total": total,
		},
	})
}
