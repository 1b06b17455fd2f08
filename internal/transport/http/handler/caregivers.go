package handler

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"adultcare-api/internal/core/auth"
	"adultcare-api/internal/feature/caregiver"
	httpez "adultcare-api/internal/transport/http/ez"
	mdw "adultcare-api/internal/transport/http/middleware"
)

type CaregiverHandler struct {
	db *gorm.DB
	// ownerScoped 非 admin 只能看到/操作自己的预约
	ownerScoped bool
}

func NewCaregiverHandler(db *gorm.DB, ownerScoped bool) *CaregiverHandler {
	return &CaregiverHandler{db: db, ownerScoped: ownerScoped}
}

func (h *CaregiverHandler) Priority() int { return 20 }

func (h *CaregiverHandler) MountAPI(api *gin.RouterGroup) {
	g := api.Group("/caregivers")

	httpez.Crud(httpez.CrudConfig[caregiver.ProfileModel]{
		DB:     h.db,
		Group:  g,
		Path:   "/profiles",
		New:    func() *caregiver.ProfileModel { return &caregiver.ProfileModel{} },
		Policy: auth.AdminOrReadOnly,
		Hooks: httpez.CrudHooks[caregiver.ProfileModel]{
			BeforeCreate: func(_ *gin.Context, _ *gorm.DB, m *caregiver.ProfileModel) error {
				return validateFees(m)
			},
			BeforeUpdate: func(_ *gin.Context, _ *gorm.DB, _, m *caregiver.ProfileModel) error {
				return validateFees(m)
			},
		},
	})

	bookingHooks := httpez.CrudHooks[caregiver.BookingModel]{
		BeforeCreate: func(_ *gin.Context, tx *gorm.DB, m *caregiver.BookingModel) error {
			return caregiverExists(tx, m.CaregiverID)
		},
		BeforeUpdate: func(_ *gin.Context, tx *gorm.DB, old, m *caregiver.BookingModel) error {
			if old.CaregiverID == m.CaregiverID {
				return nil
			}
			return caregiverExists(tx, m.CaregiverID)
		},
	}
	if h.ownerScoped {
		bookingHooks.Scope = scopeToOwner
	}
	httpez.Crud(httpez.CrudConfig[caregiver.BookingModel]{
		DB:         h.db,
		Group:      g,
		Path:       "/bookings",
		New:        func() *caregiver.BookingModel { return &caregiver.BookingModel{} },
		Policy:     auth.Authenticated,
		OwnerField: "BookedByID",
		Hooks:      bookingHooks,
	})
}

func validateFees(m *caregiver.ProfileModel) error {
	if err := m.Fees.Validate(); err != nil {
		return httpez.Field("fees", err.Error())
	}
	return nil
}

func caregiverExists(tx *gorm.DB, id uint) error {
	err := tx.Select("id").Take(&caregiver.ProfileModel{}, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return httpez.Field("caregiver", fmt.Sprintf("Invalid pk %q - object does not exist.", fmt.Sprint(id)))
	}
	if err != nil {
		return httpez.Internal("load caregiver failed", err)
	}
	return nil
}

func scopeToOwner(c *gin.Context, q *gorm.DB) *gorm.DB {
	p := mdw.PrincipalFrom(c)
	if p.IsAdmin() {
		return q
	}
	if p == nil {
		return q.Where("1 = 0")
	}
	return q.Where("booked_by_id = ?", p.UID)
}
