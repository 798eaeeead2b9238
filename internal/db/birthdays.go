package db

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

const (
	ReminderTypeDaily  = "daily"
	ReminderTypeBefore = "before"
)

type Birthday struct {
	ID           int64     `db:"id"`
	UserID       int64     `db:"user_id"`
	Name         string    `db:"name"`
	DOB          string    `db:"dob"`
	Timezone     string    `db:"timezone"`
	ReminderType string    `db:"reminder_type"`
	ReminderDays *int      `db:"reminder_days"`
	CreatedAt    time.Time `db:"created_at"`
}

// Validate rejects rows that cannot be evaluated: reminder_type is a
// stringly-typed column, so a malformed row is caught here instead of
// silently misbehaving downstream.
func (b *Birthday) Validate() error {
	switch b.ReminderType {
	case ReminderTypeDaily:
	case ReminderTypeBefore:
		if b.ReminderDays != nil && *b.ReminderDays < 0 {
			return fmt.Errorf("birthday %d: negative reminder_days %d", b.ID, *b.ReminderDays)
		}
	default:
		return fmt.Errorf("birthday %d: unknown reminder_type %q", b.ID, b.ReminderType)
	}

	return nil
}

type BirthdayRepository struct {
	db *sqlx.DB
}

func NewBirthdayRepository(db *sqlx.DB) *BirthdayRepository {
	return &BirthdayRepository{
		db: db,
	}
}

func (r *BirthdayRepository) Create(birthday *Birthday) (int64, error) {
	var id int64

	err := r.db.Get(&id, `
	    INSERT INTO birthdays
		(user_id, name, dob, timezone, reminder_type, reminder_days)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`,
		birthday.UserID,
		birthday.Name,
		birthday.DOB,
		birthday.Timezone,
		birthday.ReminderType,
		birthday.ReminderDays,
	)
	if err != nil {
		return 0, fmt.Errorf("BirthdayRepository.Create: %w", err)
	}

	return id, nil
}

func (r *BirthdayRepository) ListAll() ([]Birthday, error) {
	var birthdays []Birthday

	err := r.db.Select(&birthdays, `
	    SELECT id, user_id, name, dob, timezone, reminder_type, reminder_days, created_at
		FROM birthdays
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("BirthdayRepository.ListAll: %w", err)
	}

	return birthdays, nil
}

func (r *BirthdayRepository) ListByUserID(userID int64) ([]Birthday, error) {
	var birthdays []Birthday

	err := r.db.Select(&birthdays, `
	    SELECT id, user_id, name, dob, timezone, reminder_type, reminder_days, created_at
		FROM birthdays
		WHERE user_id = $1
		ORDER BY id ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("BirthdayRepository.ListByUserID: %w", err)
	}

	return birthdays, nil
}
