package store

import (
	"context"

	"github.com/ExpertDevUX/QRFormv4/internal/models"
)

// Stats aggregates dashboard counters.
type Stats struct {
	TotalEvents        int64 `json:"totalEvents"`        // All events.
	TotalRegistrations int64 `json:"totalRegistrations"` // All registrations.
	TotalUsers         int64 `json:"totalUsers"`         // All users.
	ActiveEvents       int64 `json:"activeEvents"`       // Events with is_active=true.
	ExportCount        int64 `json:"exportCount"`        // Process-lifetime exports, resets on restart.
}

// GetStats returns entity counts from the store plus the in-memory export
// counter. The export counter is deliberately not persisted: it restarts at
// zero with the process and concurrent increments are only atomic, not
// exactly-once.
func (s *Storage) GetStats(ctx context.Context) (Stats, error) {
	stats := Stats{ExportCount: s.exportCount.Load()}

	if errCount := s.db.WithContext(ctx).Model(&models.Event{}).
		Count(&stats.TotalEvents).Error; errCount != nil {
		return Stats{}, wrapStorage("count events", errCount)
	}
	if errCount := s.db.WithContext(ctx).Model(&models.Registration{}).
		Count(&stats.TotalRegistrations).Error; errCount != nil {
		return Stats{}, wrapStorage("count registrations", errCount)
	}
	if errCount := s.db.WithContext(ctx).Model(&models.User{}).
		Count(&stats.TotalUsers).Error; errCount != nil {
		return Stats{}, wrapStorage("count users", errCount)
	}
	if errCount := s.db.WithContext(ctx).Model(&models.Event{}).
		Where("is_active = ?", true).Count(&stats.ActiveEvents).Error; errCount != nil {
		return Stats{}, wrapStorage("count active events", errCount)
	}
	return stats, nil
}

// IncrementExportCount bumps the process-lifetime export counter and returns
// the new value.
func (s *Storage) IncrementExportCount() int64 {
	return s.exportCount.Add(1)
}
