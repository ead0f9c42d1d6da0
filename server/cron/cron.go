package cron

import (
	"time"

	"github.com/go-co-op/gocron"
)

// NewCronScheduler returns a scheduler running in 'timeZone', or UTC if
// the zone can't be loaded
func NewCronScheduler(timeZone string) *gocron.Scheduler {
	location, err := time.LoadLocation(timeZone)
	if err != nil {
		location = time.UTC
	}

	cronScheduler := gocron.NewScheduler(location)
	cronScheduler.TagsUnique()

	return cronScheduler
}
