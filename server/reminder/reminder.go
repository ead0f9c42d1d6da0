package reminder

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Daskott/addressbook/colors"
	"github.com/Daskott/addressbook/server/logger"
	"github.com/Daskott/addressbook/server/models"
	"github.com/Daskott/addressbook/server/work"
)

const (
	SEND_BIRTHDAY_REMINDER_HANDLER = "sendBirthdayReminder"
	REMINDER_JOB_PREFIX            = "birthday_reminder"
)

var logg = logger.NewLogger()

type SmsSender interface {
	SendMessage(to, msg string) error
}

type BirthdayLister interface {
	UpcomingBirthdays(ctx context.Context, userID uint) ([]models.Contact, error)
}

// Scheduler sends each opted-in user an SMS listing their contacts' upcoming
// birthdays, on the schedule in the user's reminder setting
type Scheduler struct {
	workerPool *work.WorkerPoolAdapter
	sms        SmsSender
	contacts   BirthdayLister
}

func NewScheduler(workerPool *work.WorkerPoolAdapter, sms SmsSender, contacts BirthdayLister) (*Scheduler, error) {
	scheduler := &Scheduler{workerPool: workerPool, sms: sms, contacts: contacts}

	err := workerPool.Register(SEND_BIRTHDAY_REMINDER_HANDLER, scheduler.sendBirthdayReminder)
	if err != nil {
		return nil, fmt.Errorf("NewScheduler: %v", err)
	}

	return scheduler, nil
}

// ScheduleReminders schedules a periodic reminder job for every active setting
func (s *Scheduler) ScheduleReminders(ctx context.Context) error {
	settings, err := models.ActiveReminderSettings(ctx)
	if err != nil {
		return err
	}

	for _, setting := range settings {
		if err := s.Reschedule(setting); err != nil {
			logg.Error(err)
		}
	}

	logg.Infof(colors.Blue("%v birthday reminder(s) scheduled"), len(settings))
	return nil
}

// Reschedule replaces the periodic reminder job for the setting's user,
// or removes it if the setting is inactive
func (s *Scheduler) Reschedule(setting models.ReminderSetting) error {
	name := jobName(setting.UserID)

	if !setting.Active {
		s.workerPool.RemovePeriodicJob(name)
		return nil
	}

	return s.workerPool.PeriodicallyPerform(setting.CronExpression, work.JobParams{
		Name:    name,
		Handler: SEND_BIRTHDAY_REMINDER_HANDLER,
		Args:    map[string]interface{}{"user_id": setting.UserID},
	})
}

// Enqueue queues a reminder for 'userID' to be sent right away
func (s *Scheduler) Enqueue(userID uint) error {
	return s.workerPool.Perform(work.JobParams{
		Name:    jobName(userID),
		Handler: SEND_BIRTHDAY_REMINDER_HANDLER,
		Args:    map[string]interface{}{"user_id": userID},
	})
}

// BirthdayReminderMessage formats the SMS body for 'contacts'
func BirthdayReminderMessage(contacts []models.Contact) string {
	var builder strings.Builder

	builder.WriteString("Upcoming birthdays this week:")
	for _, contact := range contacts {
		fmt.Fprintf(&builder, "\n- %s %s (%s)",
			contact.FirstName, contact.LastName, contact.Birthdate.Format("Jan 2"))
	}

	return builder.String()
}

// ---------------------------------------------------------------------------------//
// Helper functions
// --------------------------------------------------------------------------------//

func (s *Scheduler) sendBirthdayReminder(args map[string]interface{}) error {
	userID, err := userIDFromArgs(args)
	if err != nil {
		return err
	}

	ctx := context.Background()

	setting, err := models.FindReminderSetting(ctx, userID)
	if errors.Is(err, models.ErrReminderSettingNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	// Reminders may have been turned off after the job was queued
	if !setting.Active {
		return nil
	}

	contacts, err := s.contacts.UpcomingBirthdays(ctx, userID)
	if err != nil {
		return err
	}

	if len(contacts) == 0 {
		return nil
	}

	return s.sms.SendMessage(setting.PhoneNumber, BirthdayReminderMessage(contacts))
}

func userIDFromArgs(args map[string]interface{}) (uint, error) {
	// JSON numbers decode as float64
	switch v := args["user_id"].(type) {
	case float64:
		if v > 0 {
			return uint(v), nil
		}
	case uint:
		if v > 0 {
			return v, nil
		}
	}

	return 0, fmt.Errorf("invalid user_id in job args: %v", args["user_id"])
}

func jobName(userID uint) string {
	return fmt.Sprintf("%v_%v", REMINDER_JOB_PREFIX, userID)
}
