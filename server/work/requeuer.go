package work

import (
	"errors"
	"time"

	"github.com/Daskott/addressbook/colors"
	"github.com/Daskott/addressbook/server/models"
	"gorm.io/gorm"
)

// Jobs in-progress for longer than this are considered stuck
const STUCK_JOB_MINUTES = 10

type requeuer struct {
	stuckAfterMinutes uint
	stopChan          chan struct{}
}

func newRequeuer(stuckAfterMinutes uint) *requeuer {
	return &requeuer{
		stuckAfterMinutes: stuckAfterMinutes,
		stopChan:          make(chan struct{}),
	}
}

// start starts the requeuer loop that pulls jobs from 'in-progress'
// that are stuck(i.e stayed too long in-progress) and requeue them
func (r *requeuer) start() {
	go r.loop()
}

func (r *requeuer) stop() {
	r.stopChan <- struct{}{}
}

func (r *requeuer) loop() {
	// At some point we may need an exponential back-off,
	// but for now keep it simple
	sleepBackOff := 30 * time.Second
	rateLimiter := time.NewTicker(DefaultTickerDuration)
	defer rateLimiter.Stop()

	logg.Infof("Starting job requeuer")
	for {
		select {
		case <-r.stopChan:
			logg.Infof("Stopping job requeuer")
			return
		case <-rateLimiter.C:
			job, err := models.LastJobLastUpdated(r.stuckAfterMinutes, models.IN_PROGRESS_JOB)
			if errors.Is(err, gorm.ErrRecordNotFound) {
				rateLimiter.Reset(sleepBackOff)
				continue
			}

			if err != nil {
				r.logError(err)
				rateLimiter.Reset(sleepBackOff)
				continue
			}

			r.logInfof("fetched stuck job with id=%v, name=%v", job.ID, job.Name)

			r.requeue(job)
			rateLimiter.Reset(DefaultTickerDuration)
		}
	}
}

func (r *requeuer) requeue(job *models.Job) {
	jobStatus, err := models.FindJobStatus(models.ENQUEUED_JOB)
	if err != nil {
		r.logError(err)
		return
	}

	err = job.Update(map[string]interface{}{
		"claimed":       false,
		"job_status_id": jobStatus.ID,
	})
	if err != nil {
		r.logError(err)
		return
	}

	r.logInfof("job with id=%v requeued", job.ID)
}

func (r *requeuer) logInfof(template string, args ...interface{}) {
	prefix := colors.Yellow("[job requeuer] ")
	logg.Infof(prefix+template, args...)
}

func (r *requeuer) logError(err error) {
	prefix := colors.Red("[job requeuer] ")
	logg.Error(prefix, err)
}
