package handler

// User-facing messages. Invalid and expired links read identically so a
// caller cannot tell a consumed token from garbage input; only delivery
// trouble gets a distinct, actionable message.
const (
	msgCheckInbox     = "If that address is registered, we sent you a link to sign in. Please check your inbox."
	msgLinkExpired    = "The sign-in link expired. Please try again."
	msgDeliveryFailed = "The email could not be sent. Please contact your administrator."
	errInternalServer = "Internal server error"
)
