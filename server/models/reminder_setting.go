package models

import (
	"context"
	"errors"

	pkgErrors "github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// At 09:00 every day
const DEFAULT_REMINDER_CRON_EXPRESSION = "0 9 * * *"

var ErrReminderSettingNotFound = errors.New("reminder setting not found")

// ReminderSetting controls the upcoming-birthdays SMS digest for one user
type ReminderSetting struct {
	BaseModel
	UserID         uint   `json:"-" gorm:"not null;unique"`
	PhoneNumber    string `json:"phone_number" validate:"required,e164" gorm:"not null"`
	Active         bool   `json:"active" gorm:"default:false"`
	CronExpression string `json:"cron_expression" validate:"omitempty,cron" gorm:"not null"`
}

func FindReminderSetting(ctx context.Context, userID uint) (*ReminderSetting, error) {
	setting := ReminderSetting{}

	err := db.WithContext(ctx).Scopes(ownedBy(userID)).First(&setting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrReminderSettingNotFound
	}

	if err != nil {
		return nil, pkgErrors.Wrap(err, "find reminder setting")
	}

	return &setting, nil
}

// SaveReminderSetting creates or replaces the reminder setting owned by 'userID'
func SaveReminderSetting(ctx context.Context, setting *ReminderSetting, userID uint) (*ReminderSetting, error) {
	setting.UserID = userID
	if setting.CronExpression == "" {
		setting.CronExpression = DEFAULT_REMINDER_CRON_EXPRESSION
	}

	err := db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"phone_number", "active", "cron_expression", "updated_at"}),
	}).Create(setting).Error
	if err != nil {
		return nil, pkgErrors.Wrap(err, "save reminder setting")
	}

	return FindReminderSetting(ctx, userID)
}

func ActiveReminderSettings(ctx context.Context) ([]ReminderSetting, error) {
	settings := []ReminderSetting{}

	err := db.WithContext(ctx).Where("active = ?", true).Order("id asc").Find(&settings).Error
	if err != nil {
		return nil, pkgErrors.Wrap(err, "active reminder settings")
	}

	return settings, nil
}
