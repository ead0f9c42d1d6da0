package models

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveReminderSetting(t *testing.T) {
	InitializeTestDb()
	ctx := context.Background()

	_, err := FindReminderSetting(ctx, tonyID)
	assert.ErrorIs(t, err, ErrReminderSettingNotFound)

	saved, err := SaveReminderSetting(ctx, &ReminderSetting{PhoneNumber: "+12345678900", Active: true}, tonyID)
	require.Nil(t, err)
	assert.Equal(t, DEFAULT_REMINDER_CRON_EXPRESSION, saved.CronExpression, "Should fall back to the default schedule")
	assert.True(t, saved.Active)

	// Saving again replaces the user's existing setting
	updated, err := SaveReminderSetting(ctx, &ReminderSetting{PhoneNumber: "+19995550100", CronExpression: "30 8 * * 1"}, tonyID)
	require.Nil(t, err)
	assert.Equal(t, saved.ID, updated.ID)
	assert.Equal(t, "+19995550100", updated.PhoneNumber)
	assert.Equal(t, "30 8 * * 1", updated.CronExpression)
	assert.False(t, updated.Active)

	_, err = SaveReminderSetting(ctx, &ReminderSetting{PhoneNumber: "+22345678900", Active: true}, peterID)
	require.Nil(t, err)

	active, err := ActiveReminderSettings(ctx)
	require.Nil(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, peterID, active[0].UserID)
}
