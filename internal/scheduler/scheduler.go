package scheduler

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/example/leitbox/internal/leitner"
	"github.com/example/leitbox/internal/storage"
	"github.com/example/leitbox/pkg/models"
	"github.com/go-co-op/gocron"
)

// Default window for sending due-card reminders
const (
	DefaultNotificationStartHour = 8
	DefaultNotificationEndHour   = 22
)

// Notifier delivers a due-card reminder for one lesson
type Notifier interface {
	SendReminder(lessonID string, dueCount int) error
}

// Scheduler periodically checks every stored lesson for due cards and
// notifies when a lesson has work waiting
type Scheduler struct {
	scheduler *gocron.Scheduler
	store     *storage.Store
	engine    *leitner.Engine
	notifier  Notifier
}

// New creates a new scheduler instance
func New(store *storage.Store, notifier Notifier) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		store:     store,
		engine:    leitner.New(),
		notifier:  notifier,
	}
}

// Start begins running all scheduled tasks
func (s *Scheduler) Start() {
	s.scheduler.Every(1).Hour().Do(s.checkAndSendReminders)
	s.scheduler.StartAsync()
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

func (s *Scheduler) checkAndSendReminders() {
	currentHour := time.Now().Hour()
	startHour, endHour := notificationWindow()

	if currentHour < startHour || currentHour > endHour {
		log.Printf("Current hour %d is outside notification hours (%d-%d), skipping reminders",
			currentHour, startHour, endHour)
		return
	}

	lessons, err := s.store.Lessons()
	if err != nil {
		log.Printf("Error listing lessons: %v", err)
		return
	}

	today := leitner.Today()
	for _, lessonID := range lessons {
		count, err := s.dueCount(lessonID, today)
		if err != nil {
			log.Printf("Error counting due cards for lesson %s: %v", lessonID, err)
			continue
		}
		if count == 0 {
			continue
		}
		if err := s.notifier.SendReminder(lessonID, count); err != nil {
			log.Printf("Error sending reminder for lesson %s: %v", lessonID, err)
		}
	}
}

// RunManualCheck forces a due-card check for a specific lesson
func (s *Scheduler) RunManualCheck(lessonID string) error {
	count, err := s.dueCount(lessonID, leitner.Today())
	if err != nil {
		return err
	}
	if count > 0 {
		return s.notifier.SendReminder(lessonID, count)
	}
	return nil
}

func (s *Scheduler) dueCount(lessonID, today string) (int, error) {
	var cards []models.Card
	ok, err := s.store.Load(lessonID, storage.KindCards, &cards)
	if err != nil || !ok {
		return 0, err
	}
	return len(s.engine.DueCards(cards, today)), nil
}

func notificationWindow() (int, int) {
	startHour := DefaultNotificationStartHour
	endHour := DefaultNotificationEndHour

	if v := os.Getenv("NOTIFICATION_START_HOUR"); v != "" {
		if h, err := strconv.Atoi(v); err == nil && h >= 0 && h <= 23 {
			startHour = h
		}
	}
	if v := os.Getenv("NOTIFICATION_END_HOUR"); v != "" {
		if h, err := strconv.Atoi(v); err == nil && h >= 0 && h <= 23 {
			endHour = h
		}
	}
	return startHour, endHour
}
