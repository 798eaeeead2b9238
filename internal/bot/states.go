package bot

import "time"

// Conversation steps for adding a birthday. The zero value is idle.
const (
	StepIdle        = ""
	StepName        = "name"
	StepNameConfirm = "name_confirm"
	StepDOB         = "dob"
	StepDOBConfirm  = "dob_confirm"
	StepTimezone    = "timezone"
)

// UserState is the in-flight draft of one owner's add-birthday flow.
// It lives only in memory and is discarded on commit or reset.
type UserState struct {
	Step string
	Name string
	DOB  time.Time
}
