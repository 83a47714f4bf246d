package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"tasktracker/internal/docstore"
	"tasktracker/internal/model"

	"go.uber.org/zap"
)

// StatsService aggregates completion statistics over the task collection.
type StatsService struct {
	store  docstore.Store
	logger *zap.Logger
	loc    *time.Location
	now    func() time.Time
}

// NewStatsService takes the current calendar day in loc; nil means the
// server's local zone.
func NewStatsService(store docstore.Store, loc *time.Location, logger *zap.Logger) *StatsService {
	if loc == nil {
		loc = time.Local
	}
	return &StatsService{store: store, logger: logger, loc: loc, now: time.Now}
}

// Compute scans every task once.
func (s *StatsService) Compute(ctx context.Context) (model.Stats, error) {
	docs, err := s.store.Query(ctx, model.Collection, docstore.Query{})
	if err != nil {
		s.logger.Error("Failed to scan tasks for stats", zap.Error(err))
		return model.Stats{}, fmt.Errorf("scan tasks: %w", err)
	}

	startOfToday, startOfTomorrow := dayWindow(s.now(), s.loc)

	var stats model.Stats
	for _, d := range docs {
		stats.TotalTasks++
		if done, _ := d.Fields[model.FieldCompleted].(bool); done {
			stats.CompletedTasks++
		}
		if date, ok := d.Fields[model.FieldDate].(time.Time); ok {
			if !date.Before(startOfToday) && date.Before(startOfTomorrow) {
				stats.TodayTasks++
			}
		}
	}
	stats.CompletionRate = CompletionRate(stats.CompletedTasks, stats.TotalTasks)

	s.logger.Info("Stats computed",
		zap.Int("total", stats.TotalTasks),
		zap.Int("completed", stats.CompletedTasks),
		zap.Int("today", stats.TodayTasks),
	)
	return stats, nil
}

// CompletionRate is completed/total as a percentage rounded to one decimal
// place, or 0 when there are no tasks.
func CompletionRate(completed, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(completed)/float64(total)*1000) / 10
}

// dayWindow returns the UTC span of today's calendar date, where today is
// read in loc. Task dates are anchored at UTC midnight when parsed, so a
// task dated today lands in [start, end) in every zone.
func dayWindow(now time.Time, loc *time.Location) (time.Time, time.Time) {
	n := now.In(loc)
	start := time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 0, 1)
}
