package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// OwnerLister lists every user that owns categories.
type OwnerLister interface {
	ListOwners(ctx context.Context) ([]uint, error)
}

// Dispatcher schedules or performs position normalisation for one user.
type Dispatcher func(ctx context.Context, owner uint) error

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// ValidateSchedule checks a five-field cron expression.
func ValidateSchedule(schedule string) error {
	_, err := parser.Parse(schedule)
	return err
}

// NormalizeScheduler periodically compacts every user's category positions.
type NormalizeScheduler struct {
	schedule string
	owners   OwnerLister
	dispatch Dispatcher

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	cancelFunc context.CancelFunc
}

// NewNormalizeScheduler creates a scheduler. An empty schedule disables it.
func NewNormalizeScheduler(schedule string, owners OwnerLister, dispatch Dispatcher) *NormalizeScheduler {
	return &NormalizeScheduler{
		schedule: schedule,
		owners:   owners,
		dispatch: dispatch,
		cron:     cron.New(cron.WithParser(parser)),
	}
}

// Start begins the scheduler if a schedule is configured
func (s *NormalizeScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if s.schedule == "" {
		log.Printf("[SCHEDULER] Category normalisation: disabled")
		return nil
	}

	if err := ValidateSchedule(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.schedule, err)
	}

	var runCtx context.Context
	runCtx, s.cancelFunc = context.WithCancel(ctx)

	entryID, err := s.cron.AddFunc(s.schedule, func() {
		if _, err := s.RunNow(runCtx); err != nil {
			log.Printf("[SCHEDULER] Category normalisation failed: %v", err)
		}
	})
	if err != nil {
		s.cancelFunc()
		return fmt.Errorf("failed to schedule normalisation job: %w", err)
	}
	s.entryID = entryID

	s.cron.Start()
	s.isRunning = true

	log.Printf("[SCHEDULER] Category normalisation: started with schedule '%s'. Next run: %v",
		s.schedule, s.cron.Entry(entryID).Next)

	go func() {
		<-runCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop gracefully stops the scheduler, waiting for a running job.
func (s *NormalizeScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()

	s.cron.Remove(s.entryID)
	s.isRunning = false
	if s.cancelFunc != nil {
		s.cancelFunc()
		s.cancelFunc = nil
	}

	log.Printf("[SCHEDULER] Category normalisation: stopped")
}

// IsRunning returns whether the scheduler is active
func (s *NormalizeScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRun returns when the next normalisation will occur
func (s *NormalizeScheduler) NextRun() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}
	next := s.cron.Entry(s.entryID).Next
	return &next
}

// RunNow dispatches normalisation for every owner and returns how many were
// dispatched. A failure for one owner is logged and does not stop the rest.
func (s *NormalizeScheduler) RunNow(ctx context.Context) (int, error) {
	owners, err := s.owners.ListOwners(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list category owners: %w", err)
	}

	dispatched := 0
	for _, owner := range owners {
		if err := ctx.Err(); err != nil {
			return dispatched, err
		}
		if err := s.dispatch(ctx, owner); err != nil {
			log.Printf("[SCHEDULER] Category normalisation for user %d failed: %v", owner, err)
			continue
		}
		dispatched++
	}

	log.Printf("[SCHEDULER] Category normalisation dispatched for %d of %d users", dispatched, len(owners))
	return dispatched, nil
}
