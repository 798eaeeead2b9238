package reminder

import (
	"fmt"
	"time"

	"github.com/gratefultolord/wisherbot/internal/dates"
	"github.com/gratefultolord/wisherbot/internal/db"
)

// ShouldFire reports whether a reminder for the birthday is due when the
// owner's local calendar date is localToday.
//
// A "daily" birthday is due on every evaluation. A "before" birthday is
// due only when the next occurrence is exactly ReminderDays away. A
// returned error marks a row the caller should log and skip, never a
// user-facing condition.
func ShouldFire(birthday db.Birthday, localToday time.Time) (bool, error) {
	if err := birthday.Validate(); err != nil {
		return false, fmt.Errorf("reminder.ShouldFire: %w", err)
	}

	dob, err := dates.ParseDOB(birthday.DOB)
	if err != nil {
		return false, fmt.Errorf("reminder.ShouldFire: birthday %d: %w", birthday.ID, err)
	}

	switch birthday.ReminderType {
	case db.ReminderTypeDaily:
		return true, nil
	case db.ReminderTypeBefore:
		if birthday.ReminderDays == nil {
			return false, fmt.Errorf("reminder.ShouldFire: birthday %d: reminder_type is before but reminder_days is not set", birthday.ID)
		}

		return dates.DaysUntil(dob, localToday) == *birthday.ReminderDays, nil
	}

	// Validate has already rejected anything else.
	return false, nil
}
