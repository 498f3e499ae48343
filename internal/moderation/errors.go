package moderation

import "errors"

var (
	// ErrValidation marks caller input that can never succeed as given:
	// a threshold below one, a blank action reason, malformed keywords.
	ErrValidation = errors.New("moderation: validation failed")

	// ErrSettingsNotFound means the moderation settings row was never seeded.
	ErrSettingsNotFound = errors.New("moderation: settings not found")

	// ErrContentBlocked is returned by the gate when text hits a blocked keyword.
	// Its message is safe to show to end users.
	ErrContentBlocked = errors.New(ContentBlockedMessage)
)

// ContentBlockedMessage is the only detail ever exposed for a blocked submission.
const ContentBlockedMessage = "content violates community guidelines"
