package booking

import "fmt"

// ErrorKind tells the HTTP layer how to present a wizard error.
type ErrorKind string

const (
	// KindValidation errors are caught before any network call.
	KindValidation ErrorKind = "validation"
	// KindUnauthenticated means a bearer token was missing or rejected.
	KindUnauthenticated ErrorKind = "unauthenticated"
	// KindNetwork covers failed availability fetches and submissions.
	KindNetwork ErrorKind = "network"
)

// Error is the single human-readable failure the wizard reports.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func validationError(msg string) error {
	return &Error{Kind: KindValidation, Message: msg}
}

// User-facing messages.
const (
	MsgUnknownService     = "Please choose one of the listed services."
	MsgChooseServiceFirst = "Please choose a service first."
	MsgInvalidDate        = "Please pick a valid date."
	MsgPastDate           = "Please pick a date from today onward."
	MsgSlotsLoading       = "Available times are still loading."
	MsgSlotUnavailable    = "That time is no longer available. Please pick another."
	MsgChooseTime         = "Please choose a time for your consultation."
	MsgNoDate             = "Please pick a date first."
	MsgNotesTooLong       = "Notes are limited to 2000 characters."
	MsgSubmitting         = "Your booking is being submitted."
	MsgAlreadyConfirmed   = "This booking is already confirmed."
	MsgSignIn             = "Please sign in to book a consultation."
	MsgSessionExpired     = "Your sign-in has expired. Please sign in again."
	MsgSlotsFailed        = "We couldn't load available times. Please try again."
	MsgSubmitFailed       = "We couldn't complete your booking. Please try again."
)
