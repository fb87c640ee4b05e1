package internaldefs

import (
	taskauth "github.com/taskhive/taskauth"
)

// CounterDef binds a counter MetricID to its exported name and help text.
//
// CounterDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CounterDef struct {
	ID   taskauth.MetricID
	Name string
	Help string
}

// CounterDefs is an exported constant or variable used by the credential engine.
var CounterDefs = []CounterDef{
	{ID: taskauth.MetricLoginSuccess, Name: "taskauth_login_success_total", Help: "Successful login attempts."},
	{ID: taskauth.MetricLoginFailure, Name: "taskauth_login_failure_total", Help: "Failed login attempts."},
	{ID: taskauth.MetricLoginThrottled, Name: "taskauth_login_throttled_total", Help: "Login attempts denied by the sliding attempt window."},
	{ID: taskauth.MetricLoginBlocked, Name: "taskauth_login_blocked_total", Help: "Login attempts rejected on a blocked account."},
	{ID: taskauth.MetricAuthSuccess, Name: "taskauth_auth_success_total", Help: "Successful bearer-token authentications."},
	{ID: taskauth.MetricAuthFailure, Name: "taskauth_auth_failure_total", Help: "Rejected bearer-token authentications."},
	{ID: taskauth.MetricRegisterSuccess, Name: "taskauth_register_success_total", Help: "Created accounts."},
	{ID: taskauth.MetricRegisterDuplicate, Name: "taskauth_register_duplicate_total", Help: "Registrations rejected on a taken email."},
	{ID: taskauth.MetricRegisterInvalid, Name: "taskauth_register_invalid_total", Help: "Registrations rejected by field validation."},
	{ID: taskauth.MetricProfileUpdated, Name: "taskauth_profile_updated_total", Help: "Applied profile updates."},
	{ID: taskauth.MetricProfileUpdateRejected, Name: "taskauth_profile_update_rejected_total", Help: "Rejected profile updates."},
	{ID: taskauth.MetricResetRequested, Name: "taskauth_reset_requested_total", Help: "Issued password reset tokens."},
	{ID: taskauth.MetricResetDeliveryFailed, Name: "taskauth_reset_delivery_failed_total", Help: "Password reset links that could not be mailed."},
	{ID: taskauth.MetricResetConsumed, Name: "taskauth_reset_consumed_total", Help: "Passwords changed through a reset token."},
	{ID: taskauth.MetricResetRejected, Name: "taskauth_reset_rejected_total", Help: "Reset validations or consumes that failed."},
}
