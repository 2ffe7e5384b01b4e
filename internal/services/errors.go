package services

import "errors"

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrMemoryNotFound  = errors.New("memory not found")
	ErrFlagNotFound    = errors.New("flag not found")
	ErrCommentNotFound = errors.New("comment not found")

	ErrUsernameExists  = errors.New("username already taken")
	ErrEmailExists     = errors.New("email already registered")
	ErrDuplicateUpvote = errors.New("memory already upvoted by user")

	// ErrFlagLimitExceeded is returned when a report would push a memory
	// past the flag threshold. The memory is forced hidden as a side
	// effect before this error surfaces.
	ErrFlagLimitExceeded = errors.New("memory has been flagged too many times and is now hidden")

	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrAccountDisabled    = errors.New("account is disabled or banned")
	ErrInvalidToken       = errors.New("invalid identity token")
	ErrForbidden          = errors.New("operation not permitted")

	ErrInvalidBanUnit     = errors.New("invalid ban unit, use days, weeks or months")
	ErrInvalidCoordinates = errors.New("coordinates out of range")
	ErrInvalidVisibility  = errors.New("invalid visibility value")
	ErrInvalidRole        = errors.New("invalid role value")
	ErrSelfFollow         = errors.New("cannot follow yourself")
)
