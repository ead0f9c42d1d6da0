package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	MAX_PAGE_SIZE     = 100
	DEFAULT_PAGE_SIZE = 100
)

type BaseModel struct {
	ID        uint      `json:"id,omitempty" gorm:"primarykey"`
	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// ---------------------------------------------------------------------------------//
// Scopes
// --------------------------------------------------------------------------------//

// paginate skips 'offset' rows and returns at most 'limit' rows. Rows are
// ordered by primary key so consecutive pages don't overlap.
func paginate(table string, offset, limit int) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if offset < 0 {
			offset = 0
		}

		if limit > MAX_PAGE_SIZE {
			limit = MAX_PAGE_SIZE
		}

		return db.Order(table + ".id asc").Offset(offset).Limit(limit)
	}
}

func ownedBy(userID uint) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("user_id = ?", userID)
	}
}
