package domain

import "time"

type MessageID string

type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Feedback is a user's rating on a model message.
type Feedback string

const (
	FeedbackUp   Feedback = "up"
	FeedbackDown Feedback = "down"
)

type Timestamp = time.Time
