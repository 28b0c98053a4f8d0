package models

// Device preference keys. Each key is a single slot per device with an
// explicit default returned when unset.
const (
	PrefAutoLogin           = "auto_login_enabled"
	PrefChildAutoLogin      = "child_auto_login_enabled"
	PrefChildSessionID      = "child_session_id"
	PrefActiveLinkRequestID = "active_child_link_request_id"
	PrefSelectedTheme       = "selected_theme"
	PrefSubscriptionActive  = "subscription_active"
)

// PreferenceDefaults maps each known key to its value when unset
var PreferenceDefaults = map[string]string{
	PrefAutoLogin:           "true",
	PrefChildAutoLogin:      "true",
	PrefChildSessionID:      "",
	PrefActiveLinkRequestID: "",
	PrefSelectedTheme:       DefaultTheme,
	PrefSubscriptionActive:  "false",
}
