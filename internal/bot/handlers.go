package bot

import (
	"fmt"
	"log"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/gratefultolord/wisherbot/internal/dates"
	"github.com/gratefultolord/wisherbot/internal/db"
)

// Action tokens carried in inline-keyboard callback data.
const (
	ActionAddBirthday   = "add_birthday"
	ActionListBirthdays = "list_birthdays"
	ActionConfirmName   = "confirm_name"
	ActionEditName      = "edit_name"
	ActionConfirmDate   = "confirm_date"
	ActionEditDate      = "edit_date"
)

// BirthdayStore is the slice of the repository the conversational flow needs.
type BirthdayStore interface {
	Create(birthday *db.Birthday) (int64, error)
	ListByUserID(userID int64) ([]db.Birthday, error)
}

type BotService struct {
	botAPI       *tgbotapi.BotAPI
	sender       MessageSender
	birthdayRepo BirthdayStore
	sessions     *SessionStore
	now          func() time.Time
}

func New(botAPI *tgbotapi.BotAPI, sender MessageSender, birthdayRepo BirthdayStore) *BotService {
	return &BotService{
		botAPI:       botAPI,
		sender:       sender,
		birthdayRepo: birthdayRepo,
		sessions:     NewSessionStore(),
		now:          time.Now,
	}
}

func (b *BotService) Start() {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.botAPI.GetUpdatesChan(u)

	for update := range updates {
		switch {
		case update.CallbackQuery != nil:
			query := update.CallbackQuery

			if _, err := b.botAPI.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
				log.Printf("BotService.Start: cannot answer callback: %v", err)
			}

			if query.Message != nil {
				b.HandleCallback(query.Message.Chat.ID, query.Data)
			}
		case update.Message != nil && update.Message.IsCommand():
			b.HandleCommand(update.Message.Chat.ID)
		case update.Message != nil && update.Message.Text != "":
			b.HandleText(update.Message.Chat.ID, update.Message.Text)
		}
	}
}

// HandleCommand treats any command as /start: reset the session and show
// the main menu.
func (b *BotService) HandleCommand(chatID int64) {
	b.sessions.Do(chatID, func(state *UserState) {
		*state = UserState{}
	})

	options := []Choice{
		{Label: "➕ Add Birthday", Action: ActionAddBirthday},
		{Label: "📅 My Birthdays", Action: ActionListBirthdays},
	}

	welcome := "🎉 Welcome to WisherBot!\nI help you remember birthdays with inline reminders."
	if err := b.sender.SendChoice(chatID, welcome, options); err != nil {
		log.Printf("BotService.HandleCommand: %v", err)
	}
}

func (b *BotService) HandleCallback(chatID int64, action string) {
	if action == ActionListBirthdays {
		b.handleList(chatID)
		return
	}

	b.sessions.Do(chatID, func(state *UserState) {
		switch action {
		case ActionAddBirthday:
			// Starts over even mid-flow; the previous draft is dropped.
			*state = UserState{Step: StepName}
			b.send(chatID, "Enter the person's name:")
		case ActionConfirmName:
			if state.Step != StepNameConfirm {
				return
			}

			state.Step = StepDOB
			b.send(chatID, "Enter birthday (YYYY-MM-DD):")
		case ActionEditName:
			if state.Step != StepNameConfirm {
				return
			}

			state.Step = StepName
			b.send(chatID, "Enter the person's name:")
		case ActionConfirmDate:
			if state.Step != StepDOBConfirm {
				return
			}

			state.Step = StepTimezone
			b.send(chatID, "Enter timezone (e.g., Asia/Kolkata):")
		case ActionEditDate:
			if state.Step != StepDOBConfirm {
				return
			}

			state.Step = StepDOB
			b.send(chatID, "Enter birthday (YYYY-MM-DD):")
		default:
			log.Printf("BotService.HandleCallback: unknown action %q from chat %d", action, chatID)
		}
	})
}

func (b *BotService) HandleText(chatID int64, text string) {
	text = strings.TrimSpace(text)

	b.sessions.Do(chatID, func(state *UserState) {
		switch state.Step {
		case StepName:
			b.handleName(chatID, state, text)
		case StepDOB:
			b.handleDOB(chatID, state, text)
		case StepTimezone:
			b.handleTimezone(chatID, state, text)
		case StepNameConfirm, StepDOBConfirm:
			b.send(chatID, "Please use the buttons above to confirm or edit.")
		default:
			// Nothing in progress; free text outside a flow is ignored.
		}
	})
}

func (b *BotService) handleName(chatID int64, state *UserState, name string) {
	if name == "" {
		b.send(chatID, "Please enter the person's name")
		return
	}

	state.Name = name
	state.Step = StepNameConfirm

	options := []Choice{
		{Label: "✅ Confirm", Action: ActionConfirmName},
		{Label: "✏️ Edit Name", Action: ActionEditName},
	}

	if err := b.sender.SendChoice(chatID, fmt.Sprintf("Confirm name: %s", name), options); err != nil {
		log.Printf("BotService.handleName: %v", err)
	}
}

func (b *BotService) handleDOB(chatID int64, state *UserState, text string) {
	parsed, err := dates.ParseDOB(text)
	if err != nil {
		b.send(chatID, "❌ Invalid format. Please type date as YYYY-MM-DD")
		return
	}

	state.DOB = parsed
	state.Step = StepDOBConfirm

	options := []Choice{
		{Label: "✅ Confirm Date", Action: ActionConfirmDate},
		{Label: "✏️ Edit Date", Action: ActionEditDate},
	}

	if err := b.sender.SendChoice(chatID, fmt.Sprintf("Confirm DOB: %s", text), options); err != nil {
		log.Printf("BotService.handleDOB: %v", err)
	}
}

func (b *BotService) handleTimezone(chatID int64, state *UserState, zone string) {
	if zone == "" {
		b.send(chatID, "❌ Unknown timezone. Enter an IANA name like Asia/Kolkata")
		return
	}

	if _, err := time.LoadLocation(zone); err != nil {
		b.send(chatID, "❌ Unknown timezone. Enter an IANA name like Asia/Kolkata")
		return
	}

	birthday := &db.Birthday{
		UserID:       chatID,
		Name:         state.Name,
		DOB:          state.DOB.Format(dates.DOBLayout),
		Timezone:     zone,
		ReminderType: db.ReminderTypeDaily,
	}

	if _, err := b.birthdayRepo.Create(birthday); err != nil {
		// Keep the draft so the user does not re-enter everything.
		log.Printf("BotService.handleTimezone: %v", err)
		b.send(chatID, "Something went wrong while saving. Please try again.")
		return
	}

	*state = UserState{}

	b.send(chatID, fmt.Sprintf("✅ Saved! I'll remind you about %s's birthday.", birthday.Name))
}

func (b *BotService) handleList(chatID int64) {
	birthdays, err := b.birthdayRepo.ListByUserID(chatID)
	if err != nil {
		log.Printf("BotService.handleList: %v", err)
		b.send(chatID, "Something went wrong. Please try again later.")
		return
	}

	if len(birthdays) == 0 {
		b.send(chatID, "No birthdays added yet.")
		return
	}

	var sb strings.Builder
	sb.WriteString("📅 Your Birthdays:\n")

	for _, birthday := range birthdays {
		dob, err := dates.ParseDOB(birthday.DOB)
		if err != nil {
			log.Printf("BotService.handleList: birthday %d: %v", birthday.ID, err)
			continue
		}

		today := b.now()
		if location, err := time.LoadLocation(birthday.Timezone); err == nil {
			today = today.In(location)
		}

		fmt.Fprintf(&sb, "%s - %s (%d years old) - in %d days\n",
			birthday.Name, birthday.DOB, dates.Age(dob, today), dates.DaysUntil(dob, today))
	}

	b.send(chatID, sb.String())
}

func (b *BotService) send(chatID int64, text string) {
	if err := b.sender.SendText(chatID, text); err != nil {
		log.Printf("BotService: cannot send to chat %d: %v", chatID, err)
	}
}
