package backup

import (
	"fmt"

	"github.com/robfig/cron/v3"

	"fintrack/internal/logger"
)

// Schedule registers a recurring backup on c using a standard cron
// expression or descriptor such as "@daily". Failed runs are logged and
// the schedule keeps going.
func (s *Service) Schedule(c *cron.Cron, expr string) (cron.EntryID, error) {
	if err := s.checkDriver(); err != nil {
		return 0, err
	}

	id, err := c.AddFunc(expr, func() {
		snapshot, err := s.Backup()
		if err != nil {
			logger.Get().Errorw("scheduled backup failed", "error", err)
			return
		}
		logger.Get().Infow("scheduled backup completed", "name", snapshot.Name)
	})
	if err != nil {
		return 0, fmt.Errorf("invalid backup schedule %q: %w", expr, err)
	}
	return id, nil
}
