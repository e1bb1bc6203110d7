// Package handler contains the HTTP handlers for the application.
package handler

import (
	"strings"
	"time"

	"postly/internal/domain/entity"
)

// birthdayLayouts are tried in order when parsing a signup birthday.
var birthdayLayouts = []string{time.DateOnly, time.RFC3339}

// SignupRequest is the body of POST /auth/signup.
type SignupRequest struct {
	Email     string `json:"email" validate:"required,email,max=254"`
	Password  string `json:"password" validate:"required,min=8,maxbytes=72"`
	FirstName string `json:"firstName" validate:"required,max=100"`
	LastName  string `json:"lastName" validate:"required,max=100"`
	Birthday  string `json:"birthday" validate:"required"`
}

// SigninRequest is the body of POST /auth/signin. The OAuth2 password form
// field "username" is accepted in place of email.
type SigninRequest struct {
	Email    string `json:"email" form:"email" validate:"required,email"`
	Username string `json:"-" form:"username"`
	Password string `json:"password" form:"password" validate:"required"`
}

// TokenResponse is returned by signin.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"` // Seconds.
}

// CreatePostRequest is the body of POST /posts.
type CreatePostRequest struct {
	Text string `json:"text" validate:"required,max=5000"`
}

// UpdatePostRequest is the body of PUT /posts/:id. Omitted fields are left unchanged.
type UpdatePostRequest struct {
	Text *string `json:"text" validate:"omitnil,min=1,max=5000"`
}

// UserResponse is the public view of a user.
type UserResponse struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Birthday     time.Time `json:"birthday"`
	CreationDate time.Time `json:"creationDate"`
}

// PostResponse is the public view of a post.
type PostResponse struct {
	ID        string        `json:"id"`
	UserID    string        `json:"userId"`
	BlobURL   *string       `json:"blobUrl"`
	Text      string        `json:"text"`
	CreatedAt time.Time     `json:"createdAt"`
	Owner     *UserResponse `json:"owner,omitempty"`
}

// MediaUploadResponse is returned by POST /posts/:id/upload.
type MediaUploadResponse struct {
	BlobURL string        `json:"blobUrl"`
	Post    *PostResponse `json:"post"`
}

func parseBirthday(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	for _, layout := range birthdayLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), true
		}
	}

	return time.Time{}, false
}

func toUserResponse(user *entity.User) *UserResponse {
	if user == nil {
		return nil
	}

	return &UserResponse{
		ID:           user.ID.String(),
		Email:        user.Email,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		Birthday:     user.Birthday,
		CreationDate: user.CreatedAt,
	}
}

// mediaURLBuilder turns stored blob names into public URLs.
type mediaURLBuilder struct {
	publicBaseURL string
}

func (b mediaURLBuilder) url(ref string) string {
	return b.publicBaseURL + "/posts/media/" + ref
}

func (b mediaURLBuilder) post(post *entity.Post) *PostResponse {
	resp := &PostResponse{
		ID:        post.ID.String(),
		UserID:    post.UserID.String(),
		Text:      post.Text,
		CreatedAt: post.CreatedAt,
		Owner:     toUserResponse(post.Owner),
	}
	if post.HasMedia() {
		blobURL := b.url(*post.MediaRef)
		resp.BlobURL = &blobURL
	}

	return resp
}

func (b mediaURLBuilder) posts(posts []*entity.Post) []*PostResponse {
	out := make([]*PostResponse, 0, len(posts))
	for _, post := range posts {
		out = append(out, b.post(post))
	}

	return out
}
