package domain

import "time"

// Review is a user's scored opinion of a title. One per (title, author).
type Review struct {
	ID        int64
	TitleID   int64
	TitleName string
	AuthorID  int64
	// Author is the author's username, filled on reads.
	Author  string
	Text    string
	Score   int
	PubDate time.Time
}

// Comment is a reply to a review.
type Comment struct {
	ID       int64
	ReviewID int64
	AuthorID int64
	Author   string
	Text     string
	PubDate  time.Time
}
