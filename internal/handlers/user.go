package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/avetisn/plumb_erp/internal/hash"
	"github.com/avetisn/plumb_erp/internal/models"
	"github.com/avetisn/plumb_erp/internal/roles"
	"github.com/avetisn/plumb_erp/internal/util"
)

// UserHandler is the admin-facing user management surface. The role
// profile row is created and removed together with the user row.
type UserHandler struct {
	DB *gorm.DB
}

func (h *UserHandler) ListUsers(c echo.Context) error {
	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	var total int64
	if err := h.DB.Model(&models.User{}).Count(&total).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	var users []models.User
	if err := h.DB.Order("id ASC").Offset(offset).Limit(limit).Find(&users).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"data": users,
		"meta": echo.Map{"page": page, "size": limit, "total": total},
	})
}

func (h *UserHandler) CreateUser(c echo.Context) error {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Username == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "username and password required")
	}

	profile, ok := roles.ForRole(req.Role)
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("unknown role %q", req.Role))
	}

	passwordHash, err := hash.HashPassword(req.Password)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	user := models.User{Username: req.Username, PasswordHash: passwordHash, Role: req.Role}
	txErr := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		return profile.Create(tx, user.ID)
	})
	if txErr != nil {
		return echo.NewHTTPError(http.StatusBadRequest, txErr.Error())
	}

	return c.JSON(http.StatusCreated, user)
}

func (h *UserHandler) DeleteUser(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var user models.User
	if err := h.DB.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "user not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	profile, ok := roles.ForRole(user.Role)
	if !ok {
		return echo.NewHTTPError(http.StatusInternalServerError, fmt.Sprintf("unknown role %q", user.Role))
	}

	txErr := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := profile.Delete(tx, user.ID); err != nil {
			return err
		}
		return tx.Delete(&models.User{}, user.ID).Error
	})
	if txErr != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, txErr.Error())
	}

	return c.NoContent(http.StatusNoContent)
}
