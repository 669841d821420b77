package scheduler

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/example/lingobot/internal/database"
)

// Default notification window. Reminders outside it are skipped even for
// users whose notification hour matches.
const (
	DefaultNotificationStartHour = 8
	DefaultNotificationEndHour   = 22
)

// Notifier delivers review reminders to users. The bot implements it.
type Notifier interface {
	SendReminder(userID int64, dueCount int) error
}

// Scheduler runs the hourly review-reminder job.
type Scheduler struct {
	scheduler *gocron.Scheduler
	notifier  Notifier
	users     *database.UserRepository
	progress  *database.ProgressRepository
	now       func() time.Time
}

// New creates a scheduler over the given repositories.
func New(notifier Notifier, users *database.UserRepository, progress *database.ProgressRepository) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		notifier:  notifier,
		users:     users,
		progress:  progress,
		now:       time.Now,
	}
}

// Start schedules the reminder job and runs it asynchronously.
func (s *Scheduler) Start() {
	s.scheduler.Every(1).Hour().Do(s.checkAndSendReminders)
	s.scheduler.StartAsync()
}

// Stop terminates all scheduled tasks.
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// checkAndSendReminders notifies users whose notification hour matches the
// current hour and who have reviews due.
func (s *Scheduler) checkAndSendReminders() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	now := s.now()
	startHour := envHour("NOTIFICATION_START_HOUR", DefaultNotificationStartHour)
	endHour := envHour("NOTIFICATION_END_HOUR", DefaultNotificationEndHour)
	if now.Hour() < startHour || now.Hour() > endHour {
		log.Printf("Current hour %d is outside notification hours (%d-%d), skipping reminders",
			now.Hour(), startHour, endHour)
		return
	}

	users, err := s.users.GetUsersForNotification(ctx, now.Hour())
	if err != nil {
		log.Printf("Error getting users for notification: %v", err)
		return
	}

	for _, user := range users {
		due, err := s.progress.CountDueForUser(ctx, user.ID, now)
		if err != nil {
			log.Printf("Error counting due reviews for user %d: %v", user.ID, err)
			continue
		}
		if due == 0 {
			continue
		}
		if user.WordsPerDay > 0 && due > user.WordsPerDay {
			due = user.WordsPerDay
		}
		if err := s.notifier.SendReminder(user.ID, due); err != nil {
			log.Printf("Error sending reminder to user %d: %v", user.ID, err)
		}
	}
}

func envHour(name string, fallback int) int {
	if s := os.Getenv(name); s != "" {
		if h, err := strconv.Atoi(s); err == nil && h >= 0 && h <= 23 {
			return h
		}
	}
	return fallback
}

// RunManualCheck sends a reminder to one user immediately if they have
// reviews due.
func (s *Scheduler) RunManualCheck(ctx context.Context, userID int64) error {
	due, err := s.progress.CountDueForUser(ctx, userID, s.now())
	if err != nil {
		return err
	}
	if due == 0 {
		return nil
	}
	return s.notifier.SendReminder(userID, due)
}
