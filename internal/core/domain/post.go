package domain

import "time"

// DefaultTheme is assigned to posts submitted without a theme.
const DefaultTheme = "Other"

// Post is a single feedback submission.
type Post struct {
	ID         int64     `json:"id"`
	Issue      string    `json:"issue"`
	Impact     string    `json:"impact"`
	Suggestion string    `json:"suggestion"`
	Theme      string    `json:"theme"`
	CreatedAt  time.Time `json:"createdAt"`
	Upvotes    int       `json:"upvotes"`
	Author     string    `json:"author"`
}

// Update is an admin-authored follow-up attached to a post.
type Update struct {
	ID         int64     `json:"id"`
	PostID     int64     `json:"postId"`
	Content    string    `json:"content"`
	AuthorRole Role      `json:"authorRole"`
	Timestamp  time.Time `json:"timestamp"`
}

// CountItem is one bucket of an aggregated report.
type CountItem struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// Report aggregates the feedback collection by theme and by UTC day.
type Report struct {
	TotalCount     int         `json:"totalCount"`
	CountsPerTheme []CountItem `json:"countsPerTheme"`
	CountsPerDay   []CountItem `json:"countsPerDay"`
}
