package bot

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gratefultolord/wisherbot/internal/db"
)

type fakeBirthdayStore struct {
	mu        sync.Mutex
	birthdays []db.Birthday
	createErr error
}

func (s *fakeBirthdayStore) Create(birthday *db.Birthday) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.createErr != nil {
		return 0, s.createErr
	}

	record := *birthday
	record.ID = int64(len(s.birthdays) + 1)
	s.birthdays = append(s.birthdays, record)

	return record.ID, nil
}

func (s *fakeBirthdayStore) ListByUserID(userID int64) ([]db.Birthday, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []db.Birthday
	for _, birthday := range s.birthdays {
		if birthday.UserID == userID {
			out = append(out, birthday)
		}
	}

	return out, nil
}

func (s *fakeBirthdayStore) all() []db.Birthday {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]db.Birthday(nil), s.birthdays...)
}

type fakeMessageSender struct {
	mu    sync.Mutex
	texts []string
}

func (s *fakeMessageSender) SendText(chatID int64, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.texts = append(s.texts, text)

	return nil
}

func (s *fakeMessageSender) SendChoice(chatID int64, text string, options []Choice) error {
	return s.SendText(chatID, text)
}

func (s *fakeMessageSender) lastText(t *testing.T) string {
	t.Helper()

	s.mu.Lock()
	defer s.mu.Unlock()

	require.NotEmpty(t, s.texts)

	return s.texts[len(s.texts)-1]
}

func newTestService(store BirthdayStore, sender MessageSender) *BotService {
	return New(nil, sender, store)
}

func stateOf(b *BotService, chatID int64) UserState {
	var got UserState
	b.sessions.Do(chatID, func(state *UserState) {
		got = *state
	})

	return got
}

func runAddFlow(b *BotService, chatID int64, name, dob, zone string) {
	b.HandleCallback(chatID, ActionAddBirthday)
	b.HandleText(chatID, name)
	b.HandleCallback(chatID, ActionConfirmName)
	b.HandleText(chatID, dob)
	b.HandleCallback(chatID, ActionConfirmDate)
	b.HandleText(chatID, zone)
}

func TestAddBirthdayHappyPath(t *testing.T) {
	store := &fakeBirthdayStore{}
	sender := &fakeMessageSender{}
	b := newTestService(store, sender)

	runAddFlow(b, 42, "Amy", "1990-05-10", "Asia/Kolkata")

	assert.Equal(t, UserState{}, stateOf(b, 42))

	records := store.all()
	require.Len(t, records, 1)
	assert.Equal(t, int64(42), records[0].UserID)
	assert.Equal(t, "Amy", records[0].Name)
	assert.Equal(t, "1990-05-10", records[0].DOB)
	assert.Equal(t, "Asia/Kolkata", records[0].Timezone)
	assert.Equal(t, db.ReminderTypeDaily, records[0].ReminderType)
	assert.Nil(t, records[0].ReminderDays)
}

func TestEditButtonsReturnToInput(t *testing.T) {
	store := &fakeBirthdayStore{}
	sender := &fakeMessageSender{}
	b := newTestService(store, sender)

	b.HandleCallback(7, ActionAddBirthday)
	b.HandleText(7, "Amyy")
	b.HandleCallback(7, ActionEditName)
	assert.Equal(t, StepName, stateOf(b, 7).Step)

	b.HandleText(7, "Amy")
	b.HandleCallback(7, ActionConfirmName)
	b.HandleText(7, "1990-05-10")
	b.HandleCallback(7, ActionEditDate)
	assert.Equal(t, StepDOB, stateOf(b, 7).Step)

	b.HandleText(7, "1990-05-11")
	b.HandleCallback(7, ActionConfirmDate)
	b.HandleText(7, "UTC")

	records := store.all()
	require.Len(t, records, 1)
	assert.Equal(t, "Amy", records[0].Name)
	assert.Equal(t, "1990-05-11", records[0].DOB)
}

func TestInvalidDateStaysAndWritesNothing(t *testing.T) {
	store := &fakeBirthdayStore{}
	sender := &fakeMessageSender{}
	b := newTestService(store, sender)

	b.HandleCallback(42, ActionAddBirthday)
	b.HandleText(42, "Amy")
	b.HandleCallback(42, ActionConfirmName)
	b.HandleText(42, "not-a-date")

	assert.Equal(t, StepDOB, stateOf(b, 42).Step)
	assert.Empty(t, store.all())
	assert.Contains(t, sender.lastText(t), "Invalid format")
}

func TestInvalidTimezoneRepromptsWithoutCommit(t *testing.T) {
	store := &fakeBirthdayStore{}
	sender := &fakeMessageSender{}
	b := newTestService(store, sender)

	b.HandleCallback(42, ActionAddBirthday)
	b.HandleText(42, "Amy")
	b.HandleCallback(42, ActionConfirmName)
	b.HandleText(42, "1990-05-10")
	b.HandleCallback(42, ActionConfirmDate)

	for _, zone := range []string{"", "Not/AZone"} {
		b.HandleText(42, zone)
		assert.Equal(t, StepTimezone, stateOf(b, 42).Step)
		assert.Empty(t, store.all())
		assert.Contains(t, sender.lastText(t), "Unknown timezone")
	}

	b.HandleText(42, "UTC")
	assert.Len(t, store.all(), 1)
}

func TestStorageFailurePreservesDraft(t *testing.T) {
	store := &fakeBirthdayStore{createErr: errors.New("disk on fire")}
	sender := &fakeMessageSender{}
	b := newTestService(store, sender)

	runAddFlow(b, 42, "Amy", "1990-05-10", "UTC")

	state := stateOf(b, 42)
	assert.Equal(t, StepTimezone, state.Step)
	assert.Equal(t, "Amy", state.Name)
	assert.Contains(t, sender.lastText(t), "went wrong")

	// The user retries without re-entering anything else.
	store.mu.Lock()
	store.createErr = nil
	store.mu.Unlock()

	b.HandleText(42, "UTC")
	assert.Equal(t, UserState{}, stateOf(b, 42))
	assert.Len(t, store.all(), 1)
}

func TestUnexpectedInputDoesNotCorruptDraft(t *testing.T) {
	store := &fakeBirthdayStore{}
	sender := &fakeMessageSender{}
	b := newTestService(store, sender)

	b.HandleCallback(42, ActionAddBirthday)
	b.HandleText(42, "Amy")

	// Text where a button press is awaited.
	b.HandleText(42, "yes please")
	state := stateOf(b, 42)
	assert.Equal(t, StepNameConfirm, state.Step)
	assert.Equal(t, "Amy", state.Name)

	// A stale button press for a different step.
	b.HandleCallback(42, ActionConfirmDate)
	assert.Equal(t, StepNameConfirm, stateOf(b, 42).Step)

	// Free text with no flow in progress is ignored.
	b.HandleText(99, "hello?")
	assert.Equal(t, UserState{}, stateOf(b, 99))
	assert.Empty(t, store.all())
}

func TestNewAddRestartsDraft(t *testing.T) {
	store := &fakeBirthdayStore{}
	sender := &fakeMessageSender{}
	b := newTestService(store, sender)

	b.HandleCallback(42, ActionAddBirthday)
	b.HandleText(42, "Amy")
	b.HandleCallback(42, ActionAddBirthday)

	state := stateOf(b, 42)
	assert.Equal(t, StepName, state.Step)
	assert.Empty(t, state.Name)
}

func TestCommandResetsSession(t *testing.T) {
	store := &fakeBirthdayStore{}
	sender := &fakeMessageSender{}
	b := newTestService(store, sender)

	b.HandleCallback(42, ActionAddBirthday)
	b.HandleText(42, "Amy")
	b.HandleCommand(42)

	assert.Equal(t, UserState{}, stateOf(b, 42))
	assert.Contains(t, sender.lastText(t), "Welcome to WisherBot")
}

func TestListBirthdays(t *testing.T) {
	store := &fakeBirthdayStore{}
	sender := &fakeMessageSender{}
	b := newTestService(store, sender)
	b.now = func() time.Time {
		return time.Date(2024, time.May, 1, 12, 0, 0, 0, time.UTC)
	}

	b.HandleCallback(42, ActionListBirthdays)
	assert.Equal(t, "No birthdays added yet.", sender.lastText(t))

	_, err := store.Create(&db.Birthday{
		UserID:       42,
		Name:         "Amy",
		DOB:          "1990-05-10",
		Timezone:     "UTC",
		ReminderType: db.ReminderTypeDaily,
	})
	require.NoError(t, err)

	_, err = store.Create(&db.Birthday{
		UserID:       99,
		Name:         "NotYours",
		DOB:          "1991-01-01",
		Timezone:     "UTC",
		ReminderType: db.ReminderTypeDaily,
	})
	require.NoError(t, err)

	b.HandleCallback(42, ActionListBirthdays)

	text := sender.lastText(t)
	assert.Contains(t, text, "📅 Your Birthdays:")
	assert.Contains(t, text, "Amy - 1990-05-10 (33 years old) - in 9 days")
	assert.NotContains(t, text, "NotYours")
}

func TestConcurrentOwnersDoNotCrossContaminate(t *testing.T) {
	store := &fakeBirthdayStore{}
	sender := &fakeMessageSender{}
	b := newTestService(store, sender)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		chatID := int64(i + 1)

		wg.Add(1)
		go func() {
			defer wg.Done()
			runAddFlow(b, chatID, fmt.Sprintf("Person-%d", chatID), "1990-05-10", "UTC")
		}()
	}
	wg.Wait()

	records := store.all()
	require.Len(t, records, 8)

	for _, record := range records {
		assert.Equal(t, fmt.Sprintf("Person-%d", record.UserID), record.Name)
	}
}
