package feature

import (
	"adultcare-api/internal/feature/caregiver"
	"adultcare-api/internal/feature/user"
)

// Models 需要迁移的全部表（被引用的表在前）
func Models() []any {
	return []any{
		&user.UserModel{},
		&user.FeedbackModel{},
		&caregiver.ProfileModel{},
		&caregiver.BookingModel{},
	}
}
