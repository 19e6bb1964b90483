package service

import (
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// SchedulerService runs the board's background jobs: the evening reminder and
// the replay of failed writes.
type SchedulerService struct {
	cron *cron.Cron
	loc  *time.Location
}

func NewSchedulerService(loc *time.Location) *SchedulerService {
	if loc == nil {
		loc = time.Local
	}
	return &SchedulerService{
		cron: cron.New(cron.WithLocation(loc), cron.WithSeconds(), cron.WithChain(cron.Recover(cron.DefaultLogger))),
		loc:  loc,
	}
}

// ScheduleDaily registers job at the given HH:MM wall time.
func (s *SchedulerService) ScheduleDaily(name, clock string, job func()) (cron.EntryID, error) {
	spec, err := buildDailySpec(clock)
	if err != nil {
		return 0, err
	}
	id, err := s.cron.AddFunc(spec, named(name, job))
	if err != nil {
		return 0, fmt.Errorf("schedule %s: %w", name, err)
	}
	log.Printf("[info] %s scheduled daily at %s (%s)", name, clock, s.loc)
	return id, nil
}

// ScheduleInterval registers job to run every interval, rounded to whole seconds.
func (s *SchedulerService) ScheduleInterval(name string, interval time.Duration, job func()) (cron.EntryID, error) {
	if interval <= 0 {
		return 0, fmt.Errorf("schedule %s: interval must be positive", name)
	}
	seconds := int(interval.Round(time.Second) / time.Second)
	if seconds < 1 {
		seconds = 1
	}
	id, err := s.cron.AddFunc(fmt.Sprintf("@every %ds", seconds), named(name, job))
	if err != nil {
		return 0, fmt.Errorf("schedule %s: %w", name, err)
	}
	log.Printf("[info] %s scheduled every %ds", name, seconds)
	return id, nil
}

// Next reports when the entry fires next; zero if it is unknown or not started.
func (s *SchedulerService) Next(id cron.EntryID) time.Time {
	return s.cron.Entry(id).Next
}

func (s *SchedulerService) Start() {
	s.cron.Start()
}

// Stop waits for running jobs to finish.
func (s *SchedulerService) Stop() {
	<-s.cron.Stop().Done()
}

func named(name string, job func()) func() {
	return func() {
		started := time.Now()
		job()
		log.Printf("[info] job %s finished in %s", name, time.Since(started).Round(time.Millisecond))
	}
}

func buildDailySpec(clock string) (string, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(clock), ":")
	if !ok {
		return "", fmt.Errorf("invalid time %q, expected HH:MM", clock)
	}
	hour, err := strconv.Atoi(hh)
	if err != nil || hour < 0 || hour > 23 {
		return "", fmt.Errorf("invalid hour in %q", clock)
	}
	minute, err := strconv.Atoi(mm)
	if err != nil || minute < 0 || minute > 59 {
		return "", fmt.Errorf("invalid minute in %q", clock)
	}
	// second minute hour dom month dow
	return fmt.Sprintf("0 %d %d * * *", minute, hour), nil
}
