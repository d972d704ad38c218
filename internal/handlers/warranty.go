package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/avetisn/plumb_erp/internal/warranty"
)

type WarrantyHandler struct {
	Svc *warranty.Service
}

func (h *WarrantyHandler) IssueCard(c echo.Context) error {
	userID, err := GetID(c)
	if err != nil {
		return err
	}

	itemID, err := strconv.Atoi(c.Param("itemID"))
	if err != nil || itemID <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid order item id")
	}

	card, err := h.Svc.IssueCard(c.Request().Context(), userID, uint(itemID))
	if err != nil {
		switch {
		case errors.Is(err, warranty.ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, warranty.ErrNotCompleted):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		case errors.Is(err, warranty.ErrNoWarranty):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.Is(err, warranty.ErrIssued):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	return c.JSON(http.StatusCreated, card)
}

func (h *WarrantyHandler) MyCards(c echo.Context) error {
	userID, err := GetID(c)
	if err != nil {
		return err
	}

	cards, err := h.Svc.MyCards(c.Request().Context(), userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, cards)
}
