package portalsync

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func at(hour, minute int) time.Time {
	return time.Date(2026, 3, 14, hour, minute, 0, 0, time.UTC)
}

func TestIsExportDue(t *testing.T) {
	cases := []struct {
		hour, minute, interval int
		want                   bool
	}{
		{0, 0, 6, true},
		{6, 0, 6, true},
		{12, 0, 6, true},
		{18, 0, 6, true},
		{6, 1, 6, false},
		{7, 0, 6, false},
		{5, 59, 6, false},
		{0, 0, 12, true},
		{12, 0, 12, true},
		{6, 0, 12, false},
		{15, 0, 3, true},
	}
	for _, tc := range cases {
		got := isExportDue(at(tc.hour, tc.minute), tc.interval)
		require.Equal(t, tc.want, got, "%02d:%02d every %dh", tc.hour, tc.minute, tc.interval)
	}
}

func TestIsWarningDue(t *testing.T) {
	cases := []struct {
		hour, minute, interval int
		want                   bool
	}{
		{5, 45, 6, true},  // 15 minutes before the 06:00 run
		{11, 45, 6, true}, // before 12:00
		{23, 45, 6, true}, // before 00:00
		{5, 44, 6, false},
		{5, 46, 6, false},
		{6, 45, 6, false},
		{11, 45, 12, true},
		{5, 45, 12, false},
	}
	for _, tc := range cases {
		got := isWarningDue(at(tc.hour, tc.minute), tc.interval)
		require.Equal(t, tc.want, got, "%02d:%02d every %dh", tc.hour, tc.minute, tc.interval)
	}
}

func TestWarningTargetHour(t *testing.T) {
	target := warningTargetHour(at(5, 45))
	require.Equal(t, 6, target.Hour())
	require.Zero(t, target.Minute())

	// Warning before midnight points at the next day's run
	target = warningTargetHour(at(23, 45))
	require.Equal(t, 0, target.Hour())
	require.Equal(t, 15, target.Day())
}

func TestNewSchedulerRejectsNonDivisorIntervals(t *testing.T) {
	s := NewScheduler(nil, &fakeNotifier{}, 5, "UTC")
	require.Equal(t, 6, s.intervalHours)

	s = NewScheduler(nil, &fakeNotifier{}, 0, "UTC")
	require.Equal(t, 6, s.intervalHours)

	s = NewScheduler(nil, &fakeNotifier{}, 8, "UTC")
	require.Equal(t, 8, s.intervalHours)
}

func TestNewSchedulerUnknownTimezoneFallsBackToUTC(t *testing.T) {
	s := NewScheduler(nil, &fakeNotifier{}, 6, "Mars/Olympus_Mons")
	require.Equal(t, time.UTC, s.location)
}

func TestTickDedupesWithinTheHour(t *testing.T) {
	properties := newMemoryPropertyRepo()
	portal := newFakePortal()
	orchestrator, _ := newTestOrchestrator(portal, properties, newMemoryAgentRepo())
	notifier := &fakeNotifier{}
	s := &Scheduler{
		orchestrator:  orchestrator,
		notifier:      notifier,
		intervalHours: 6,
		location:      time.UTC,
		stopChan:      make(chan struct{}),
	}

	// The scheduler ticks every minute; a slow sync can make two ticks
	// observe the same run minute
	s.tick(at(6, 0))
	s.tick(at(6, 0))
	require.Equal(t, 1, portal.callCount("GetListings"))

	s.tick(at(12, 0))
	require.Equal(t, 2, portal.callCount("GetListings"))
}

func TestTickWarnsOncePerRun(t *testing.T) {
	notifier := &fakeNotifier{}
	s := &Scheduler{
		notifier:      notifier,
		intervalHours: 6,
		location:      time.UTC,
		stopChan:      make(chan struct{}),
	}

	s.tick(at(5, 45))
	s.tick(at(5, 45))
	require.Len(t, notifier.notifications, 1)
	require.Contains(t, notifier.notifications[0].Message, "15 minutes")
}
