package caregiver

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"adultcare-api/internal/feature/user"
)

const unknown = "Unknown"

const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
)

// Fee 定点金额，JSON 固定两位小数（"0.00"）
type Fee struct{ decimal.Decimal }

func (f Fee) MarshalJSON() ([]byte, error) {
	return []byte(`"` + f.StringFixed(2) + `"`), nil
}

// UnmarshalJSON 非数字按类型错误返回，交给上层生成字段错误
func (f *Fee) UnmarshalJSON(b []byte) error {
	if err := f.Decimal.UnmarshalJSON(b); err != nil {
		return &json.UnmarshalTypeError{Value: string(b), Type: reflect.TypeOf(float64(0))}
	}
	return nil
}

var maxFee = decimal.New(1, 6) // decimal(8,2) 整数部分最多 6 位

var (
	ErrFeeDigits   = errors.New("Ensure that there are no more than 8 digits in total.")
	ErrFeeDecimals = errors.New("Ensure that there are no more than 2 decimal places.")
)

func (f Fee) Validate() error {
	if !f.Equal(f.Round(2)) {
		return ErrFeeDecimals
	}
	if f.Abs().GreaterThanOrEqual(maxFee) {
		return ErrFeeDigits
	}
	return nil
}

type ProfileModel struct {
	ID             uint    `gorm:"primaryKey" json:"id"`
	Name           string  `gorm:"size:255;not null" json:"name" binding:"max=255"`
	Avatar         *string `gorm:"size:200" json:"avatar" binding:"omitempty,url,max=200"`
	Specialization string  `gorm:"size:255;not null" json:"specialization" binding:"max=255"`
	Qualification  string  `gorm:"size:255;not null" json:"qualification" binding:"max=255"`
	Fees           Fee     `gorm:"type:decimal(8,2);not null" json:"fees"`
}

func (ProfileModel) TableName() string { return "caregiver_profiles" }

// BeforeSave 未填字段落默认值
func (p *ProfileModel) BeforeSave(*gorm.DB) error {
	if strings.TrimSpace(p.Name) == "" {
		p.Name = unknown
	}
	if strings.TrimSpace(p.Specialization) == "" {
		p.Specialization = unknown
	}
	if strings.TrimSpace(p.Qualification) == "" {
		p.Qualification = unknown
	}
	if p.Avatar != nil && *p.Avatar == "" {
		p.Avatar = nil
	}
	return nil
}

// BookingModel 删除护工或用户时级联删除预约
type BookingModel struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	CaregiverID uint            `gorm:"not null;index" json:"caregiver" binding:"required"`
	Caregiver   *ProfileModel   `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	BookedByID  uint            `gorm:"not null;index" json:"booked_by"`
	BookedBy    *user.UserModel `gorm:"foreignKey:BookedByID;constraint:OnDelete:CASCADE" json:"-"`
	Date        string          `gorm:"size:10;not null" json:"date" binding:"required,datetime=2006-01-02"`
	TimeSlot    string          `gorm:"size:100;not null" json:"time_slot" binding:"required,max=100"`
	Status      string          `gorm:"size:20;not null;index" json:"status" binding:"omitempty,oneof=pending confirmed cancelled"`
	Notes       string          `gorm:"type:text" json:"notes"`
}

func (BookingModel) TableName() string { return "caregiver_bookings" }

func (b *BookingModel) BeforeSave(*gorm.DB) error {
	if b.Status == "" {
		b.Status = StatusPending
	}
	return nil
}
