package promo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/avetisn/plumb_erp/internal/models"
)

const (
	ReasonNotFound      = "promo code not found"
	ReasonInactive      = "promo code is not active"
	ReasonOutOfWindow   = "promo code is not valid at this time"
	ReasonLimitExceeded = "promo code usage limit exceeded"
)

// Evaluation is the outcome of checking a promo code against an order
// subtotal. It carries no side effects; committing the usage happens
// separately inside the order transaction.
type Evaluation struct {
	Applicable     bool              `json:"applicable"`
	Reason         string            `json:"reason,omitempty"`
	DiscountAmount decimal.Decimal   `json:"discount_amount"`
	Promo          *models.PromoCode `json:"-"`
}

func inapplicable(reason string) Evaluation {
	return Evaluation{Applicable: false, Reason: reason, DiscountAmount: decimal.Zero}
}

// Compute checks applicability and computes the discount for an already
// loaded promo row. Safe to call repeatedly; it mutates nothing.
func Compute(p *models.PromoCode, subtotal decimal.Decimal, now time.Time) Evaluation {
	if p == nil {
		return inapplicable(ReasonNotFound)
	}
	if p.Status != models.PromoStatusActive {
		return inapplicable(ReasonInactive)
	}
	if now.Before(p.ValidFrom) || now.After(p.ValidUntil) {
		return inapplicable(ReasonOutOfWindow)
	}
	if p.MinOrderAmount != nil && subtotal.LessThan(*p.MinOrderAmount) {
		return inapplicable(fmt.Sprintf("minimum order amount of %s required", p.MinOrderAmount.StringFixed(2)))
	}
	if p.UsageLimit != nil && p.UsedCount >= *p.UsageLimit {
		return inapplicable(ReasonLimitExceeded)
	}

	var discount decimal.Decimal
	if p.DiscountType == models.DiscountTypePercentage {
		discount = subtotal.Mul(p.DiscountValue).Div(decimal.NewFromInt(100))
	} else {
		discount = p.DiscountValue
	}

	if p.MaxDiscount != nil && discount.GreaterThan(*p.MaxDiscount) {
		discount = *p.MaxDiscount
	}

	return Evaluation{
		Applicable:     true,
		DiscountAmount: discount.Round(2),
		Promo:          p,
	}
}

type Evaluator struct {
	DB *gorm.DB
}

// Evaluate looks the code up and runs Compute against the current row.
// A zero now means evaluation time.
func (e *Evaluator) Evaluate(ctx context.Context, code string, subtotal decimal.Decimal, now time.Time) (Evaluation, error) {
	if now.IsZero() {
		now = time.Now()
	}

	var p models.PromoCode
	if err := e.DB.WithContext(ctx).Where("code = ?", code).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return inapplicable(ReasonNotFound), nil
		}
		return Evaluation{}, err
	}

	return Compute(&p, subtotal, now), nil
}
