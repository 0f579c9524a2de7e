package handler

import "github.com/scrumsquad/feedback-board/internal/core/domain"

// errorResponse documents the error envelope rendered by the API error handler.
type errorResponse struct {
	OK      bool   `json:"ok" example:"false"`
	Message string `json:"message"`
}

type okResponse struct {
	OK bool `json:"ok" example:"true"`
}

// --- Auth ---

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type signupRequest struct {
	Username    string `json:"username"    validate:"required,max=64"`
	Password    string `json:"password"    validate:"required,min=6"`
	DisplayName string `json:"displayName" validate:"max=80"`
}

// userResponse is the public view of an account. The username is never
// exposed.
type userResponse struct {
	Handle      string `json:"handle"`
	DisplayName string `json:"displayName"`
	IsAdmin     bool   `json:"isAdmin"`
	Role        string `json:"role"`
}

type authResponse struct {
	OK   bool          `json:"ok"`
	User *userResponse `json:"user,omitempty"`
}

func toUserResponse(id domain.Identity) *userResponse {
	return &userResponse{
		Handle:      id.Handle,
		DisplayName: id.DisplayName,
		IsAdmin:     id.Role.CanAuthorUpdates(),
		Role:        string(id.Role),
	}
}

// --- Feedback ---

type createPostRequest struct {
	Issue      string `json:"issue"      validate:"required,max=2000"`
	Impact     string `json:"impact"     validate:"required,max=2000"`
	Suggestion string `json:"suggestion" validate:"max=2000"`
	Theme      string `json:"theme"      validate:"max=64"`
}

type createPostResponse struct {
	OK   bool         `json:"ok"`
	Item *domain.Post `json:"item"`
}

type upvoteRequest struct {
	Undo bool `json:"undo"`
}

type upvoteResponse struct {
	OK      bool `json:"ok"`
	Upvotes int  `json:"upvotes"`
}

// addUpdateRequest accepts the update body as either text or content.
// It carries no validate tags: the role check must run before any payload
// check.
type addUpdateRequest struct {
	Text    string `json:"text"`
	Content string `json:"content"`
}

func (r addUpdateRequest) body() string {
	if r.Text != "" {
		return r.Text
	}
	return r.Content
}

type addUpdateResponse struct {
	OK     bool           `json:"ok"`
	Update *domain.Update `json:"update"`
}
