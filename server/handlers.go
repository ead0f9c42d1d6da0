package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Daskott/addressbook/server/models"
)

var errReminderInactive = errors.New("reminders are turned off, activate them before sending one")

func (s *Server) health(rw http.ResponseWriter, r *http.Request) {
	writeResponse(rw, ResponsePayload{Success: true, Data: map[string]string{"status": "ok"}}, http.StatusOK)
}

func (s *Server) jwks(rw http.ResponseWriter, r *http.Request) {
	jwks, err := s.keyPair.JWKS()
	if err != nil {
		writeErrorResponse(rw, err, http.StatusInternalServerError)
		return
	}

	json.NewEncoder(rw).Encode(jwks)
}

func (s *Server) listContacts(rw http.ResponseWriter, r *http.Request) {
	offset, err := queryInt(r, "skip", 0)
	if err != nil {
		writeErrorResponse(rw, err, http.StatusBadRequest)
		return
	}

	limit, err := queryInt(r, "limit", models.DEFAULT_PAGE_SIZE)
	if err != nil {
		writeErrorResponse(rw, err, http.StatusBadRequest)
		return
	}

	query := r.URL.Query()
	filter := models.ContactFilter{
		Name:     query.Get("name"),
		LastName: query.Get("lastname"),
		Email:    query.Get("email"),
	}

	contacts, err := s.contacts.ListContacts(r.Context(), requestUserID(r), offset, limit, filter)
	if err != nil {
		writeErrorResponse(rw, err, http.StatusInternalServerError)
		return
	}

	writeResponse(rw, ResponsePayload{Success: true, Data: contacts}, http.StatusOK)
}

func (s *Server) createContact(rw http.ResponseWriter, r *http.Request) {
	data := models.Contact{}
	if !decodeRequestBody(rw, r, &data) {
		return
	}

	contact, err := s.contacts.CreateContact(r.Context(), &data, requestUserID(r))
	if err != nil {
		writeErrorResponse(rw, err, http.StatusInternalServerError)
		return
	}

	writeResponse(rw, ResponsePayload{Success: true, Data: contact}, http.StatusCreated)
}

func (s *Server) upcomingBirthdays(rw http.ResponseWriter, r *http.Request) {
	contacts, err := s.contacts.UpcomingBirthdays(r.Context(), requestUserID(r))
	if err != nil {
		writeErrorResponse(rw, err, http.StatusInternalServerError)
		return
	}

	writeResponse(rw, ResponsePayload{Success: true, Data: contacts}, http.StatusOK)
}

func (s *Server) findContact(rw http.ResponseWriter, r *http.Request) {
	contactID, err := idFromPath(r, "id")
	if err != nil {
		writeErrorResponse(rw, err, http.StatusBadRequest)
		return
	}

	contact, err := s.contacts.GetContact(r.Context(), contactID, requestUserID(r))
	if err != nil {
		writeContactErrorResponse(rw, err)
		return
	}

	writeResponse(rw, ResponsePayload{Success: true, Data: contact}, http.StatusOK)
}

func (s *Server) updateContact(rw http.ResponseWriter, r *http.Request) {
	contactID, err := idFromPath(r, "id")
	if err != nil {
		writeErrorResponse(rw, err, http.StatusBadRequest)
		return
	}

	data := models.Contact{}
	if !decodeRequestBody(rw, r, &data) {
		return
	}

	contact, err := s.contacts.UpdateContact(r.Context(), contactID, &data, requestUserID(r))
	if err != nil {
		writeContactErrorResponse(rw, err)
		return
	}

	writeResponse(rw, ResponsePayload{Success: true, Data: contact}, http.StatusOK)
}

func (s *Server) deleteContact(rw http.ResponseWriter, r *http.Request) {
	contactID, err := idFromPath(r, "id")
	if err != nil {
		writeErrorResponse(rw, err, http.StatusBadRequest)
		return
	}

	contact, err := s.contacts.RemoveContact(r.Context(), contactID, requestUserID(r))
	if err != nil {
		writeContactErrorResponse(rw, err)
		return
	}

	writeResponse(rw, ResponsePayload{Success: true, Data: contact}, http.StatusOK)
}

func (s *Server) findReminderSetting(rw http.ResponseWriter, r *http.Request) {
	setting, err := models.FindReminderSetting(r.Context(), requestUserID(r))
	if errors.Is(err, models.ErrReminderSettingNotFound) {
		writeErrorResponse(rw, err, http.StatusNotFound)
		return
	}

	if err != nil {
		writeErrorResponse(rw, err, http.StatusInternalServerError)
		return
	}

	writeResponse(rw, ResponsePayload{Success: true, Data: setting}, http.StatusOK)
}

func (s *Server) updateReminderSetting(rw http.ResponseWriter, r *http.Request) {
	data := models.ReminderSetting{}
	if !decodeRequestBody(rw, r, &data) {
		return
	}

	setting, err := models.SaveReminderSetting(r.Context(), &data, requestUserID(r))
	if err != nil {
		writeErrorResponse(rw, err, http.StatusInternalServerError)
		return
	}

	err = s.reminders.Reschedule(*setting)
	if err != nil {
		writeErrorResponse(rw, err, http.StatusInternalServerError)
		return
	}

	writeResponse(rw, ResponsePayload{Success: true, Data: setting}, http.StatusOK)
}

func (s *Server) sendReminder(rw http.ResponseWriter, r *http.Request) {
	userID := requestUserID(r)

	setting, err := models.FindReminderSetting(r.Context(), userID)
	if errors.Is(err, models.ErrReminderSettingNotFound) {
		writeErrorResponse(rw, err, http.StatusNotFound)
		return
	}

	if err != nil {
		writeErrorResponse(rw, err, http.StatusInternalServerError)
		return
	}

	if !setting.Active {
		writeErrorResponse(rw, errReminderInactive, http.StatusConflict)
		return
	}

	err = s.reminders.Enqueue(userID)
	if err != nil {
		writeErrorResponse(rw, err, http.StatusInternalServerError)
		return
	}

	writeResponse(rw, ResponsePayload{Success: true}, http.StatusAccepted)
}

// writeContactErrorResponse maps a missing contact to 404, anything else to 500
func writeContactErrorResponse(rw http.ResponseWriter, err error) {
	if errors.Is(err, models.ErrContactNotFound) {
		writeErrorResponse(rw, err, http.StatusNotFound)
		return
	}

	writeErrorResponse(rw, err, http.StatusInternalServerError)
}
