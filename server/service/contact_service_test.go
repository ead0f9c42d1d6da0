package service

import (
	"context"
	"testing"

	"github.com/Daskott/addressbook/server/models"
	"github.com/stretchr/testify/assert"
)

// recordingStore records the user id each call was made with
type recordingStore struct {
	calls []string
	users []uint
}

func (s *recordingStore) record(call string, userID uint) {
	s.calls = append(s.calls, call)
	s.users = append(s.users, userID)
}

func (s *recordingStore) List(ctx context.Context, userID uint, offset, limit int, filter models.ContactFilter) ([]models.Contact, error) {
	s.record("List", userID)
	return []models.Contact{{FirstName: filter.Name}}, nil
}

func (s *recordingStore) Get(ctx context.Context, contactID, userID uint) (*models.Contact, error) {
	s.record("Get", userID)
	return nil, models.ErrContactNotFound
}

func (s *recordingStore) Create(ctx context.Context, contact *models.Contact, userID uint) (*models.Contact, error) {
	s.record("Create", userID)
	return contact, nil
}

func (s *recordingStore) Update(ctx context.Context, contactID uint, contact *models.Contact, userID uint) (*models.Contact, error) {
	s.record("Update", userID)
	return contact, nil
}

func (s *recordingStore) Remove(ctx context.Context, contactID, userID uint) (*models.Contact, error) {
	s.record("Remove", userID)
	return &models.Contact{}, nil
}

func (s *recordingStore) UpcomingBirthdays(ctx context.Context, userID uint) ([]models.Contact, error) {
	s.record("UpcomingBirthdays", userID)
	return []models.Contact{}, nil
}

func TestContactServicePassesUserThrough(t *testing.T) {
	store := &recordingStore{}
	contactService := NewContactService(store)
	ctx := context.Background()

	contacts, err := contactService.ListContacts(ctx, 7, 0, 10, models.ContactFilter{Name: "wanda"})
	assert.Nil(t, err)
	assert.Equal(t, "wanda", contacts[0].FirstName, "Should pass the filter through")

	_, err = contactService.GetContact(ctx, 1, 7)
	assert.ErrorIs(t, err, models.ErrContactNotFound, "Should pass store errors through unchanged")

	_, err = contactService.CreateContact(ctx, &models.Contact{}, 7)
	assert.Nil(t, err)

	_, err = contactService.UpdateContact(ctx, 1, &models.Contact{}, 7)
	assert.Nil(t, err)

	_, err = contactService.RemoveContact(ctx, 1, 7)
	assert.Nil(t, err)

	_, err = contactService.UpcomingBirthdays(ctx, 7)
	assert.Nil(t, err)

	assert.Equal(t, []string{"List", "Get", "Create", "Update", "Remove", "UpcomingBirthdays"}, store.calls)
	assert.Equal(t, []uint{7, 7, 7, 7, 7, 7}, store.users, "Every call should be scoped to the caller")
}
