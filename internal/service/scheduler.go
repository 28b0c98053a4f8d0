package service

import (
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler runs the periodic maintenance jobs: expired session cleanup
// and stale link request expiry.
type Scheduler struct {
	cron           *cron.Cron
	authService    *AuthService
	pairingService *PairingService
	requestMaxAge  time.Duration
}

// NewScheduler creates a scheduler wired to the maintenance jobs
func NewScheduler(authService *AuthService, pairingService *PairingService, requestMaxAge time.Duration) *Scheduler {
	if requestMaxAge <= 0 {
		requestMaxAge = 24 * time.Hour
	}
	return &Scheduler{
		cron:           cron.New(),
		authService:    authService,
		pairingService: pairingService,
		requestMaxAge:  requestMaxAge,
	}
}

// Start registers the jobs and begins running them
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc("@hourly", func() {
		if err := s.authService.CleanupExpiredSessions(); err != nil {
			log.Printf("Failed to clean up expired sessions: %v", err)
		}
	})
	if err != nil {
		return err
	}

	_, err = s.cron.AddFunc("@every 6h", func() {
		if err := s.pairingService.CleanupStaleRequests(s.requestMaxAge); err != nil {
			log.Printf("Failed to clean up stale link requests: %v", err)
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	return nil
}

// Stop halts the scheduler, waiting for running jobs to finish
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}
