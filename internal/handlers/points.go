package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/avetisn/plumb_erp/internal/models"
)

type PointsHandler struct {
	DB *gorm.DB
}

func (h *PointsHandler) Balance(c echo.Context) error {
	userID, err := GetID(c)
	if err != nil {
		return err
	}

	var balance int64
	if err := h.DB.Model(&models.PointEntry{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(points), 0)").
		Scan(&balance).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"balance": balance})
}

func (h *PointsHandler) History(c echo.Context) error {
	userID, err := GetID(c)
	if err != nil {
		return err
	}

	var entries []models.PointEntry
	if err := h.DB.Where("user_id = ?", userID).Order("created_at DESC").Find(&entries).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, entries)
}
