package portalsync

import (
	"context"
	"fmt"
	"log"
	"time"

	notifdomain "propdesk-backend/internal/notification/domain"
)

// Scheduler fires a full bulk export followed by a bulk import every
// IntervalHours, with a warning notification 15 minutes ahead. It ticks
// once a minute and derives the target hours from the wall clock in the
// configured timezone, so missed ticks and drift cannot shift the cadence.
type Scheduler struct {
	orchestrator  *Orchestrator
	notifier      Notifier
	intervalHours int
	location      *time.Location
	stopChan      chan struct{}

	lastRunHour  string
	lastWarnHour string
}

func NewScheduler(orchestrator *Orchestrator, notifier Notifier, intervalHours int, timezone string) *Scheduler {
	if intervalHours <= 0 || 24%intervalHours != 0 {
		intervalHours = 6
	}
	location, err := time.LoadLocation(timezone)
	if err != nil {
		log.Printf("[SyncScheduler] Unknown timezone %q, falling back to UTC", timezone)
		location = time.UTC
	}
	return &Scheduler{
		orchestrator:  orchestrator,
		notifier:      notifier,
		intervalHours: intervalHours,
		location:      location,
		stopChan:      make(chan struct{}),
	}
}

// Start begins the scheduler loop
func (s *Scheduler) Start() {
	log.Printf("[SyncScheduler] Starting portal sync scheduler (every %d hours, tz %s)", s.intervalHours, s.location)

	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.tick(time.Now().In(s.location))
			case <-s.stopChan:
				log.Println("[SyncScheduler] Scheduler stopped")
				return
			}
		}
	}()
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop() {
	close(s.stopChan)
}

func (s *Scheduler) tick(now time.Time) {
	if isWarningDue(now, s.intervalHours) {
		hour := warningTargetHour(now).Format("2006-01-02T15")
		if s.lastWarnHour != hour {
			s.lastWarnHour = hour
			s.notifier.Notify(notifdomain.NotificationInfo, "Portal sync starting soon",
				"The scheduled PropertyFinder sync starts in 15 minutes", "")
		}
	}

	if isExportDue(now, s.intervalHours) {
		hour := now.Format("2006-01-02T15")
		if s.lastRunHour != hour {
			s.lastRunHour = hour
			s.runSync()
		}
	}
}

// isExportDue reports whether t falls on a scheduled run minute: the top
// of any hour divisible by the interval.
func isExportDue(t time.Time, intervalHours int) bool {
	return t.Hour()%intervalHours == 0 && t.Minute() == 0
}

// isWarningDue reports whether t is 15 minutes ahead of a scheduled run.
func isWarningDue(t time.Time, intervalHours int) bool {
	return (t.Hour()+1)%intervalHours == 0 && t.Minute() == 45
}

// warningTargetHour returns the run hour a warning at t refers to.
func warningTargetHour(t time.Time) time.Time {
	return t.Add(15 * time.Minute).Truncate(time.Hour)
}

// runSync executes export then import. Failures are caught and reported
// via the notification feed; the scheduler never brings the process down.
func (s *Scheduler) runSync() {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[SyncScheduler] Panic during scheduled sync: %v", r)
			s.notifier.Notify(notifdomain.NotificationError, "Scheduled sync crashed",
				fmt.Sprintf("The scheduled portal sync panicked: %v", r), "")
		}
	}()

	log.Println("[SyncScheduler] Running scheduled portal sync")
	ctx := context.Background()

	exportResult, err := s.orchestrator.SyncAllToPropertyFinder(ctx)
	if err != nil {
		log.Printf("[SyncScheduler] Bulk export failed: %v", err)
		s.notifier.Notify(notifdomain.NotificationError, "Scheduled export failed",
			fmt.Sprintf("Bulk export to PropertyFinder failed: %v", err), "")
	}

	importResult, err := s.orchestrator.SyncFromPropertyFinder(ctx)
	if err != nil {
		log.Printf("[SyncScheduler] Bulk import failed: %v", err)
		s.notifier.Notify(notifdomain.NotificationError, "Scheduled import failed",
			fmt.Sprintf("Bulk import from PropertyFinder failed: %v", err), "")
	}

	if exportResult != nil && importResult != nil {
		s.notifier.Notify(notifdomain.NotificationSuccess, "Scheduled sync finished",
			fmt.Sprintf("Export: %d/%d synced (%d failed). Import: %d/%d synced (%d failed).",
				exportResult.Synced, exportResult.Total, exportResult.Failed,
				importResult.Synced, importResult.Total, importResult.Failed), "")
	}
}
