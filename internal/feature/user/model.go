package user

import (
	"time"
)

type UserModel struct {
	ID           uint   `gorm:"primaryKey"`
	Email        string `gorm:"uniqueIndex;size:254;not null"`
	Username     string `gorm:"size:255;not null"`
	Role         string `gorm:"size:20;not null;default:family"`
	Phone        string `gorm:"size:20;not null"`
	Location     string `gorm:"size:255;not null"`
	PasswordHash string `gorm:"size:128;not null"`
	IsActive     bool   `gorm:"not null;default:true"`
	IsStaff      bool   `gorm:"not null;default:false"`
	IsSuperuser  bool   `gorm:"not null;default:false"`
	LastLogin    *time.Time

	DateJoined time.Time `gorm:"autoCreateTime"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime"`
}

func (UserModel) TableName() string { return "users" }

// Identity 对外暴露的用户字段（不含密码）
type Identity struct {
	ID       uint   `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Role     string `json:"role"`
	Phone    string `json:"phone"`
	Location string `json:"location"`
}

func (u *UserModel) Identity() Identity {
	return Identity{
		ID: u.ID, Email: u.Email, Username: u.Username,
		Role: u.Role, Phone: u.Phone, Location: u.Location,
	}
}

// FeedbackModel 用户删除时 user_id 置空，反馈保留
type FeedbackModel struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	UserID      *uint      `gorm:"index" json:"user"`
	User        *UserModel `gorm:"constraint:OnDelete:SET NULL" json:"-"`
	Rating      int        `gorm:"not null" json:"rating"`
	Description *string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time  `gorm:"autoCreateTime;<-:create" json:"created_at"`
}

func (FeedbackModel) TableName() string { return "feedback" }
