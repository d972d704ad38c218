package roles

import (
	"gorm.io/gorm"

	"github.com/avetisn/plumb_erp/internal/models"
)

// Profile is the role-specific side record a user carries. Each variant
// owns its own table row and knows how to create and remove it when the
// user is created or deleted.
type Profile interface {
	Role() string
	Create(tx *gorm.DB, userID uint) error
	Delete(tx *gorm.DB, userID uint) error
}

type adminProfile struct{}

func (adminProfile) Role() string                          { return models.RoleAdmin }
func (adminProfile) Create(tx *gorm.DB, userID uint) error { return nil }
func (adminProfile) Delete(tx *gorm.DB, userID uint) error { return nil }

type salesManagerProfile struct{}

func (salesManagerProfile) Role() string { return models.RoleSalesManager }
func (salesManagerProfile) Create(tx *gorm.DB, userID uint) error {
	return tx.Create(&models.SalesManagerProfile{UserID: userID}).Error
}
func (salesManagerProfile) Delete(tx *gorm.DB, userID uint) error {
	return tx.Where("user_id = ?", userID).Delete(&models.SalesManagerProfile{}).Error
}

type plumberProfile struct{}

func (plumberProfile) Role() string { return models.RolePlumber }
func (plumberProfile) Create(tx *gorm.DB, userID uint) error {
	return tx.Create(&models.PlumberProfile{UserID: userID}).Error
}
func (plumberProfile) Delete(tx *gorm.DB, userID uint) error {
	return tx.Where("user_id = ?", userID).Delete(&models.PlumberProfile{}).Error
}

type accountantProfile struct{}

func (accountantProfile) Role() string { return models.RoleAccountant }
func (accountantProfile) Create(tx *gorm.DB, userID uint) error {
	return tx.Create(&models.AccountantProfile{UserID: userID}).Error
}
func (accountantProfile) Delete(tx *gorm.DB, userID uint) error {
	return tx.Where("user_id = ?", userID).Delete(&models.AccountantProfile{}).Error
}

type distributorProfile struct{}

func (distributorProfile) Role() string { return models.RoleDistributor }
func (distributorProfile) Create(tx *gorm.DB, userID uint) error {
	return tx.Create(&models.DistributorProfile{UserID: userID}).Error
}
func (distributorProfile) Delete(tx *gorm.DB, userID uint) error {
	return tx.Where("user_id = ?", userID).Delete(&models.DistributorProfile{}).Error
}

type fieldExecutiveProfile struct{}

func (fieldExecutiveProfile) Role() string { return models.RoleFieldExecutive }
func (fieldExecutiveProfile) Create(tx *gorm.DB, userID uint) error {
	return tx.Create(&models.FieldExecutiveProfile{UserID: userID}).Error
}
func (fieldExecutiveProfile) Delete(tx *gorm.DB, userID uint) error {
	return tx.Where("user_id = ?", userID).Delete(&models.FieldExecutiveProfile{}).Error
}

type workerProfile struct{}

func (workerProfile) Role() string { return models.RoleWorker }
func (workerProfile) Create(tx *gorm.DB, userID uint) error {
	return tx.Create(&models.WorkerProfile{UserID: userID}).Error
}
func (workerProfile) Delete(tx *gorm.DB, userID uint) error {
	return tx.Where("user_id = ?", userID).Delete(&models.WorkerProfile{}).Error
}

var profiles = []Profile{
	adminProfile{},
	salesManagerProfile{},
	plumberProfile{},
	accountantProfile{},
	distributorProfile{},
	fieldExecutiveProfile{},
	workerProfile{},
}

// ForRole resolves the profile variant for a role name.
func ForRole(role string) (Profile, bool) {
	for _, p := range profiles {
		if p.Role() == role {
			return p, true
		}
	}
	return nil, false
}

func Known(role string) bool {
	_, ok := ForRole(role)
	return ok
}
