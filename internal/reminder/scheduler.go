package reminder

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gratefultolord/wisherbot/internal/dates"
	"github.com/gratefultolord/wisherbot/internal/db"
)

// Store is the slice of the birthday repository the scheduler needs.
type Store interface {
	ListAll() ([]db.Birthday, error)
}

// Sender delivers reminder messages to an owner's chat.
type Sender interface {
	SendText(chatID int64, text string) error
}

type firedKey struct {
	birthdayID int64
	localDate  string
}

// Scheduler periodically evaluates every stored birthday in its own
// timezone and delivers reminders for the ones that are due. Each
// (birthday, local calendar date) pair fires at most once, so ticking
// more often than daily never repeats a delivery.
type Scheduler struct {
	store    Store
	sender   Sender
	interval time.Duration
	now      func() time.Time

	mu    sync.Mutex
	fired map[firedKey]struct{}

	deliveries sync.WaitGroup
}

func NewScheduler(store Store, sender Sender, interval time.Duration) *Scheduler {
	return &Scheduler{
		store:    store,
		sender:   sender,
		interval: interval,
		now:      time.Now,
		fired:    make(map[firedKey]struct{}),
	}
}

// Run ticks until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	log.Printf("Scheduler: started, interval %s", s.interval)

	for {
		select {
		case <-ctx.Done():
			log.Printf("Scheduler: stopped")
			return
		case <-ticker.C:
			s.Tick()
		}
	}
}

// Tick evaluates every stored birthday once. A failure on one record is
// logged and does not stop evaluation of the rest; deliveries run in the
// background so a slow send never delays other records or the next tick.
func (s *Scheduler) Tick() {
	birthdays, err := s.store.ListAll()
	if err != nil {
		log.Printf("Scheduler.Tick: %v", err)
		return
	}

	s.pruneFired()

	for _, birthday := range birthdays {
		if err := s.evaluate(birthday); err != nil {
			log.Printf("Scheduler.Tick: %v", err)
		}
	}
}

func (s *Scheduler) evaluate(birthday db.Birthday) error {
	location, err := time.LoadLocation(birthday.Timezone)
	if err != nil {
		return fmt.Errorf("birthday %d: unresolvable timezone %q: %w", birthday.ID, birthday.Timezone, err)
	}

	localNow := s.now().In(location)

	due, err := ShouldFire(birthday, localNow)
	if err != nil {
		return err
	}

	if !due {
		return nil
	}

	if !s.markFired(firedKey{birthday.ID, localNow.Format(dates.DOBLayout)}) {
		return nil
	}

	dob, err := dates.ParseDOB(birthday.DOB)
	if err != nil {
		return fmt.Errorf("birthday %d: %w", birthday.ID, err)
	}

	text := fmt.Sprintf("🎂 Reminder: %s's birthday is in %d day(s)! 🎉",
		birthday.Name, dates.DaysUntil(dob, localNow))

	s.deliveries.Add(1)
	go func() {
		defer s.deliveries.Done()

		if err := s.sender.SendText(birthday.UserID, text); err != nil {
			log.Printf("Scheduler: cannot deliver reminder %d to chat %d: %v", birthday.ID, birthday.UserID, err)
		}
	}()

	return nil
}

// markFired records the (birthday, local date) pair and reports whether
// it was seen for the first time.
func (s *Scheduler) markFired(key firedKey) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, seen := s.fired[key]; seen {
		return false
	}

	s.fired[key] = struct{}{}

	return true
}

// pruneFired drops guard entries more than two days behind UTC; no
// timezone's local date can still match them.
func (s *Scheduler) pruneFired() {
	cutoff := s.now().UTC().AddDate(0, 0, -2).Format(dates.DOBLayout)

	s.mu.Lock()
	defer s.mu.Unlock()

	for key := range s.fired {
		if key.localDate < cutoff {
			delete(s.fired, key)
		}
	}
}
