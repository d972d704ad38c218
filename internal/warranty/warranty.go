package warranty

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/avetisn/plumb_erp/internal/models"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrNotCompleted = errors.New("order is not completed")
	ErrNoWarranty   = errors.New("product carries no warranty")
	ErrIssued       = errors.New("warranty card already issued")
)

// Expiry is purchase date plus the product's warranty period.
func Expiry(purchased time.Time, months int) time.Time {
	return purchased.AddDate(0, months, 0)
}

type Service struct {
	DB *gorm.DB
}

// IssueCard creates the warranty card for one of the caller's order items.
// The order must be completed, and the expiry is anchored to the order
// date, not to issuance time.
func (s *Service) IssueCard(ctx context.Context, userID, orderItemID uint) (*models.WarrantyCard, error) {
	var card *models.WarrantyCard

	txErr := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item models.OrderItem
		if err := tx.First(&item, orderItemID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: order item %d", ErrNotFound, orderItemID)
			}
			return err
		}

		var o models.Order
		if err := tx.First(&o, item.OrderID).Error; err != nil {
			return err
		}
		if o.UserID != userID {
			return fmt.Errorf("%w: order item %d", ErrNotFound, orderItemID)
		}
		if o.Status != models.OrderStatusCompleted {
			return ErrNotCompleted
		}

		var product models.Product
		if err := tx.First(&product, item.ProductID).Error; err != nil {
			return err
		}
		if product.WarrantyPeriodInMonths <= 0 {
			return ErrNoWarranty
		}

		var existing int64
		if err := tx.Model(&models.WarrantyCard{}).Where("order_item_id = ?", item.ID).Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return ErrIssued
		}

		card = &models.WarrantyCard{
			OrderItemID: item.ID,
			ProductID:   item.ProductID,
			UserID:      userID,
			IssuedAt:    time.Now(),
			ExpiresAt:   Expiry(o.OrderDate, product.WarrantyPeriodInMonths),
		}
		return tx.Create(card).Error
	})

	if txErr != nil {
		return nil, txErr
	}
	return card, nil
}

func (s *Service) MyCards(ctx context.Context, userID uint) ([]models.WarrantyCard, error) {
	var cards []models.WarrantyCard
	if err := s.DB.WithContext(ctx).Where("user_id = ?", userID).Find(&cards).Error; err != nil {
		return nil, err
	}
	return cards, nil
}
