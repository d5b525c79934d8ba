package services

import (
	"context"
	"log"
	"time"
)

// Sweeper removes stored sessions whose tokens have expired
type Sweeper interface {
	SweepExpired(ctx context.Context, now time.Time) (int64, error)
}

// StartScheduler runs the session sweeper every interval until ctx is done.
// A non-positive interval disables it.
func StartScheduler(ctx context.Context, interval time.Duration, sweeper Sweeper) {
	if interval <= 0 || sweeper == nil {
		log.Println("Session sweeper disabled")
		return
	}

	log.Printf("Starting session sweeper, interval %s", interval)
	go runSweeper(ctx, interval, sweeper)
}

func runSweeper(ctx context.Context, interval time.Duration, sweeper Sweeper) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Session sweeper stopped")
			return
		case now := <-ticker.C:
			SweepOnce(ctx, sweeper, now)
		}
	}
}

// SweepOnce runs a single sweep and logs the outcome
func SweepOnce(ctx context.Context, sweeper Sweeper, now time.Time) int64 {
	n, err := sweeper.SweepExpired(ctx, now)
	if err != nil {
		log.Printf("Error sweeping expired sessions: %v", err)
		return 0
	}
	if n > 0 {
		log.Printf("Swept %d expired sessions", n)
	}
	return n
}
