package service

// Auth events counted by an AuthEventRecorder.
const (
	AuthEventSignup         = "signup"
	AuthEventLogin          = "login"
	AuthEventRefresh        = "refresh"
	AuthEventLogout         = "logout"
	AuthEventForgotPassword = "forgot_password"
	AuthEventResetPassword  = "reset_password"
)

// Outcomes of an auth event.
const (
	AuthOutcomeSuccess = "success"
	AuthOutcomeFailure = "failure"
)

// AuthEventRecorder counts authentication outcomes for observability.
type AuthEventRecorder interface {
	RecordAuthEvent(event, outcome string)
}
