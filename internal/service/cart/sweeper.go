package cart

import (
	"context"
	"time"
)

// DefaultSweepInterval is how often the background sweeper runs.
const DefaultSweepInterval = 5 * time.Minute

// StartSweeper runs the expiry sweep on a fixed interval until ctx is
// cancelled. Intended to be launched once per process from main.
func (s *Service) StartSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Printf("cart: sweeper stopped")
			return
		case <-ticker.C:
			swept, err := s.SweepExpired(ctx, time.Now())
			if err != nil {
				s.logger.Printf("cart: sweep pass finished with errors: %v", err)
			}
			if swept > 0 {
				s.logger.Printf("cart: released %d expired carts", swept)
			}
		}
	}
}
