package service

import (
	"context"
	"time"
)

// Post lifecycle event types.
const (
	EventPostCreated       = "post.created"
	EventPostUpdated       = "post.updated"
	EventPostDeleted       = "post.deleted"
	EventPostMediaAttached = "post.media_attached"
)

// PostEvent describes a change to a post for downstream consumers (feeds, moderation, search).
type PostEvent struct {
	RequestID  string    `json:"request_id,omitempty"` // For distributed tracing
	Type       string    `json:"type"`
	PostID     string    `json:"post_id"`
	UserID     string    `json:"user_id"`
	MediaRef   string    `json:"media_ref,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// EventPublisher defines the interface for publishing events to a message queue
type EventPublisher interface {
	PublishPostEvent(ctx context.Context, event *PostEvent) error

	// Close releases any resources held by the publisher
	Close() error
}
