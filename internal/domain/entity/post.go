package entity

import (
	"time"

	"github.com/google/uuid"
)

// Post is a piece of user content. Exactly one user owns it.
type Post struct {
	ID        uuid.UUID
	UserID    uuid.UUID // Owner. Only this user may mutate or delete the post.
	MediaRef  *string   // Server-assigned blob name of the attached media, nil when none.
	Text      string
	CreatedAt time.Time

	// Owner is populated on read paths that need the author's profile.
	Owner *User
}

// HasMedia reports whether a media blob is attached.
func (p *Post) HasMedia() bool {
	return p.MediaRef != nil && *p.MediaRef != ""
}

// PostPatch carries the fields of an update. Nil fields are left untouched.
type PostPatch struct {
	Text *string
}

// IsEmpty reports whether the patch changes nothing.
func (p PostPatch) IsEmpty() bool {
	return p.Text == nil
}
