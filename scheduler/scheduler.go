// Package scheduler runs the periodic jobs: morning reminders for tasks due
// today and the purge of expired invite codes.
package scheduler

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"sitecrew/config"
	"sitecrew/model"
	"sitecrew/notify"
	"sitecrew/store"
)

const jobTimeout = 2 * time.Minute

type Scheduler struct {
	cron     *cron.Cron
	store    *store.Store
	notifier notify.Notifier
	logger   *zap.Logger
	now      func() time.Time
}

func New(st *store.Store, notifier notify.Notifier, logger *zap.Logger, env config.SchedulerEnv) (*Scheduler, error) {
	cronLog := cron.PrintfLogger(zap.NewStdLog(logger.Named("cron")))
	s := &Scheduler{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithLogger(cronLog),
			cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
		),
		store:    st,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}

	if _, err := s.cron.AddFunc(env.ReminderSpec, s.job("due-task reminders", func(ctx context.Context) error {
		n, err := s.RemindDueTasks(ctx)
		s.logger.Info("due-task reminders sent", zap.Int("users", n))
		return err
	})); err != nil {
		return nil, fmt.Errorf("invalid reminder schedule %q: %w", env.ReminderSpec, err)
	}
	if _, err := s.cron.AddFunc(env.PurgeSpec, s.job("invite purge", func(ctx context.Context) error {
		n, err := s.store.PurgeExpiredInvites(ctx, s.now())
		s.logger.Info("expired invite codes purged", zap.Int64("deleted", n))
		return err
	})); err != nil {
		return nil, fmt.Errorf("invalid invite purge schedule %q: %w", env.PurgeSpec, err)
	}
	return s, nil
}

func (s *Scheduler) job(name string, fn func(ctx context.Context) error) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			s.logger.Error("scheduled job failed", zap.String("job", name), zap.Error(err))
		}
	}
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started", zap.Int("jobs", len(s.cron.Entries())))
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// RemindDueTasks notifies the primary assignee of every unfinished task due
// today, one message per user. It returns the number of users notified.
func (s *Scheduler) RemindDueTasks(ctx context.Context) (int, error) {
	now := s.now()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	tasks, err := s.store.TasksDueBetween(ctx, start, start.AddDate(0, 0, 1))
	if err != nil {
		return 0, err
	}
	if len(tasks) == 0 {
		return 0, nil
	}

	ids := make([]string, 0, len(tasks))
	for _, t := range tasks {
		ids = append(ids, t.ID)
	}
	primaries, err := s.store.PrimaryAssignees(ctx, ids)
	if err != nil {
		return 0, err
	}

	byUser := map[string][]model.Task{}
	for _, t := range tasks {
		if user, ok := primaries[t.ID]; ok {
			byUser[user] = append(byUser[user], t)
		}
	}
	users := make([]string, 0, len(byUser))
	for u := range byUser {
		users = append(users, u)
	}
	sort.Strings(users)

	sent := 0
	for _, u := range users {
		if err := s.notifier.Notify(ctx, reminder(u, byUser[u])); err != nil {
			s.logger.Warn("reminder notification failed", zap.String("user_id", u), zap.Error(err))
			continue
		}
		sent++
	}
	return sent, nil
}

func reminder(userID string, tasks []model.Task) notify.Message {
	titles := make([]string, 0, len(tasks))
	ids := make([]string, 0, len(tasks))
	for _, t := range tasks {
		titles = append(titles, t.Title)
		ids = append(ids, t.ID)
	}
	return notify.Message{
		Title:      "Tasks due today",
		Body:       fmt.Sprintf("You have %d task(s) due today: %s", len(tasks), strings.Join(titles, ", ")),
		Recipients: []string{userID},
		Data: map[string]string{
			"type":     "due_reminder",
			"task_ids": strings.Join(ids, ","),
		},
	}
}
