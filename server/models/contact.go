package models

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	pkgErrors "github.com/pkg/errors"
	"gorm.io/gorm"
)

const BIRTHDAY_WINDOW_DAYS = 7

var (
	ErrContactNotFound = errors.New("contact not found")

	// full replace on update, zero values included
	updatableContactFields = []string{
		"first_name",
		"last_name",
		"email",
		"phone",
		"birthdate",
		"notes",
		"first_name_search",
		"last_name_search",
		"email_search",
	}

	likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)
)

type Contact struct {
	BaseModel
	FirstName string `json:"firstname" validate:"required,max=50" gorm:"not null;size:50"`
	LastName  string `json:"lastname" validate:"required,max=50" gorm:"not null;size:50"`
	Email     string `json:"email" validate:"required,email" gorm:"not null"`
	Phone     string `json:"phone" validate:"required,max=50" gorm:"not null;size:50"`
	Birthdate Date   `json:"birthdate" validate:"required,past_date" gorm:"not null"`
	Notes     string `json:"notes"`
	UserID    uint   `json:"-" gorm:"not null;index"`

	// Lower-cased copies used for filtering, since sqlite's LOWER() only folds ASCII
	FirstNameSearch string `json:"-" gorm:"not null;default:''"`
	LastNameSearch  string `json:"-" gorm:"not null;default:''"`
	EmailSearch     string `json:"-" gorm:"not null;default:''"`
}

func (c *Contact) fillSearchColumns() {
	c.FirstNameSearch = strings.ToLower(c.FirstName)
	c.LastNameSearch = strings.ToLower(c.LastName)
	c.EmailSearch = strings.ToLower(c.Email)
}

// ContactFilter holds the optional substring filters for listing contacts.
// Empty fields are ignored; a contact matches if it matches any non-empty one.
type ContactFilter struct {
	Name     string
	LastName string
	Email    string
}

type ContactStore interface {
	List(ctx context.Context, userID uint, offset, limit int, filter ContactFilter) ([]Contact, error)
	Get(ctx context.Context, contactID, userID uint) (*Contact, error)
	Create(ctx context.Context, contact *Contact, userID uint) (*Contact, error)
	Update(ctx context.Context, contactID uint, contact *Contact, userID uint) (*Contact, error)
	Remove(ctx context.Context, contactID, userID uint) (*Contact, error)
	UpcomingBirthdays(ctx context.Context, userID uint) ([]Contact, error)
}

// GormContactStore implements [ContactStore].
type GormContactStore struct {
	db  *gorm.DB
	now func() time.Time
}

var _ ContactStore = (*GormContactStore)(nil)

func NewContactStore(db *gorm.DB) *GormContactStore {
	return &GormContactStore{db: db, now: time.Now}
}

func (s *GormContactStore) List(ctx context.Context, userID uint, offset, limit int, filter ContactFilter) ([]Contact, error) {
	contacts := []Contact{}
	if limit <= 0 {
		return contacts, nil
	}

	query := s.db.WithContext(ctx).
		Scopes(ownedBy(userID), paginate("contacts", offset, limit))

	clauses, args := filter.sqlConditions()
	if len(clauses) > 0 {
		query = query.Where("("+strings.Join(clauses, " OR ")+")", args...)
	}

	err := query.Find(&contacts).Error
	if err != nil {
		return nil, pkgErrors.Wrap(err, "list contacts")
	}

	return contacts, nil
}

func (s *GormContactStore) Get(ctx context.Context, contactID, userID uint) (*Contact, error) {
	return findOwnedContact(s.db.WithContext(ctx), contactID, userID)
}

func (s *GormContactStore) Create(ctx context.Context, contact *Contact, userID uint) (*Contact, error) {
	record := Contact{
		FirstName: contact.FirstName,
		LastName:  contact.LastName,
		Email:     contact.Email,
		Phone:     contact.Phone,
		Birthdate: contact.Birthdate,
		Notes:     contact.Notes,
		UserID:    userID,
	}
	record.fillSearchColumns()

	err := s.db.WithContext(ctx).Create(&record).Error
	if err != nil {
		return nil, pkgErrors.Wrap(err, "create contact")
	}

	return &record, nil
}

func (s *GormContactStore) Update(ctx context.Context, contactID uint, contact *Contact, userID uint) (*Contact, error) {
	var updated *Contact

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := findOwnedContact(tx, contactID, userID)
		if err != nil {
			return err
		}

		existing.FirstName = contact.FirstName
		existing.LastName = contact.LastName
		existing.Email = contact.Email
		existing.Phone = contact.Phone
		existing.Birthdate = contact.Birthdate
		existing.Notes = contact.Notes
		existing.fillSearchColumns()

		err = tx.Model(existing).Select(updatableContactFields).Updates(existing).Error
		if err != nil {
			return pkgErrors.Wrap(err, "update contact")
		}

		updated = existing
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

func (s *GormContactStore) Remove(ctx context.Context, contactID, userID uint) (*Contact, error) {
	var removed *Contact

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := findOwnedContact(tx, contactID, userID)
		if err != nil {
			return err
		}

		err = tx.Scopes(ownedBy(userID)).Delete(&Contact{}, existing.ID).Error
		if err != nil {
			return pkgErrors.Wrap(err, "remove contact")
		}

		removed = existing
		return nil
	})
	if err != nil {
		return nil, err
	}

	return removed, nil
}

// UpcomingBirthdays returns contacts whose birthday (month & day, any year) falls
// between today and 'BIRTHDAY_WINDOW_DAYS' days from now.
//
// The birth month must equal both today's month and the month at the end of
// the window, so a window that crosses into the next month matches nothing.
func (s *GormContactStore) UpcomingBirthdays(ctx context.Context, userID uint) ([]Contact, error) {
	contacts := []Contact{}

	today := s.now().UTC()
	nextWeek := today.AddDate(0, 0, BIRTHDAY_WINDOW_DAYS)

	month, day := birthdatePartSQL(s.db, "month"), birthdatePartSQL(s.db, "day")

	err := s.db.WithContext(ctx).
		Scopes(ownedBy(userID)).
		Where(fmt.Sprintf("%s = ? AND %s >= ?", month, day), int(today.Month()), today.Day()).
		Where(fmt.Sprintf("%s = ? AND %s <= ?", month, day), int(nextWeek.Month()), nextWeek.Day()).
		Order("contacts.id asc").
		Find(&contacts).Error
	if err != nil {
		return nil, pkgErrors.Wrap(err, "upcoming birthdays")
	}

	return contacts, nil
}

// ---------------------------------------------------------------------------------//
// Helper functions
// --------------------------------------------------------------------------------//

func findOwnedContact(db *gorm.DB, contactID, userID uint) (*Contact, error) {
	contact := Contact{}

	err := db.Scopes(ownedBy(userID)).First(&contact, "id = ?", contactID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrContactNotFound
	}

	if err != nil {
		return nil, pkgErrors.Wrap(err, "find contact")
	}

	return &contact, nil
}

func (filter ContactFilter) sqlConditions() ([]string, []interface{}) {
	clauses := []string{}
	args := []interface{}{}

	columns := [][2]string{
		{"first_name_search", filter.Name},
		{"last_name_search", filter.LastName},
		{"email_search", filter.Email},
	}

	for _, column := range columns {
		if column[1] == "" {
			continue
		}
		clauses = append(clauses, fmt.Sprintf(`%s LIKE ? ESCAPE '\'`, column[0]))
		args = append(args, "%"+likeEscaper.Replace(strings.ToLower(column[1]))+"%")
	}

	return clauses, args
}

// birthdatePartSQL returns the SQL expression extracting 'part' (month|day)
// from contacts.birthdate as an integer for the active dialect.
func birthdatePartSQL(db *gorm.DB, part string) string {
	if db.Dialector.Name() == "postgres" {
		return fmt.Sprintf("CAST(EXTRACT(%s FROM birthdate) AS INTEGER)", strings.ToUpper(part))
	}

	format := "%m"
	if part == "day" {
		format = "%d"
	}
	return fmt.Sprintf("CAST(strftime('%s', birthdate) AS INTEGER)", format)
}
