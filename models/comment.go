package models

import (
	"time"

	"github.com/google/uuid"
)

// Comment is a customer's rated review; one per (restaurant, account)
type Comment struct {
	ID           uint          `json:"id" gorm:"primaryKey"`
	RestaurantID uint          `json:"restaurant_id" gorm:"not null;uniqueIndex:idx_comment_restaurant_account"`
	AccountID    uuid.UUID     `json:"account_id" gorm:"type:text;not null;uniqueIndex:idx_comment_restaurant_account"`
	Text         string        `json:"text"`
	Rating       int           `json:"rating" gorm:"not null"`
	CreatedOn    time.Time     `json:"created_on" gorm:"autoCreateTime"`
	Votes        []CommentVote `json:"-" gorm:"foreignKey:CommentID;constraint:OnDelete:CASCADE"`
}

const (
	VoteLike    = 1
	VoteDislike = -1
)

// CommentVote holds at most one row per (account, comment); no row means no vote
type CommentVote struct {
	AccountID uuid.UUID `json:"account_id" gorm:"type:text;primaryKey"`
	CommentID uint      `json:"comment_id" gorm:"primaryKey;index"`
	VoteType  int       `json:"vote_type" gorm:"not null"`
}
