package service

import (
	"context"

	"github.com/Daskott/addressbook/server/models"
)

// ContactService is the only way handlers & jobs reach the contact store.
// Every method requires the id of the user who owns the contacts.
type ContactService struct {
	store models.ContactStore
}

func NewContactService(store models.ContactStore) *ContactService {
	return &ContactService{store: store}
}

func (cs *ContactService) ListContacts(ctx context.Context, userID uint, offset, limit int, filter models.ContactFilter) ([]models.Contact, error) {
	return cs.store.List(ctx, userID, offset, limit, filter)
}

func (cs *ContactService) GetContact(ctx context.Context, contactID, userID uint) (*models.Contact, error) {
	return cs.store.Get(ctx, contactID, userID)
}

func (cs *ContactService) CreateContact(ctx context.Context, contact *models.Contact, userID uint) (*models.Contact, error) {
	return cs.store.Create(ctx, contact, userID)
}

func (cs *ContactService) UpdateContact(ctx context.Context, contactID uint, contact *models.Contact, userID uint) (*models.Contact, error) {
	return cs.store.Update(ctx, contactID, contact, userID)
}

func (cs *ContactService) RemoveContact(ctx context.Context, contactID, userID uint) (*models.Contact, error) {
	return cs.store.Remove(ctx, contactID, userID)
}

func (cs *ContactService) UpcomingBirthdays(ctx context.Context, userID uint) ([]models.Contact, error) {
	return cs.store.UpcomingBirthdays(ctx, userID)
}
