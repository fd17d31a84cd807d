package handler

const (
	errInternalServer     = "Internal server error"
	errUserNotFound       = "User not found"
	errMessageNotFound    = "Message not found"
	errInvalidCredentials = "Invalid username or password"
	errUsernameTaken      = "Username already taken"
	errEmailTaken         = "Email already registered"
	errSelfFollow         = "Cannot follow yourself"
	errSelfLike           = "Cannot like your own message"
	errMessageEmpty       = "Message text is empty"
	errMessageTooLong     = "Message text exceeds 280 characters"
	errReauthMissing      = "Reauthentication required"
	errReauthExpired      = "Reauthentication expired, request a new token"
)
