// Package votes implements the like/dislike toggle on comments.
package votes

import (
	"context"
	"time"

	"food-marketplace-api/apperr"
	"food-marketplace-api/models"
	"food-marketplace-api/store"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Tally is the aggregate for one comment as seen by one account.
type Tally struct {
	Likes           int64 `json:"likes"`
	Dislikes        int64 `json:"dislikes"`
	CurrentUserVote *int  `json:"current_user_vote"`
}

// CommentView is a comment with its author name and tally.
type CommentView struct {
	ID              uint      `json:"id"`
	RestaurantID    uint      `json:"restaurant_id"`
	AccountID       uuid.UUID `json:"account_id"`
	Name            string    `json:"name"`
	Text            string    `json:"text"`
	Rating          int       `json:"rating"`
	CreatedOn       time.Time `json:"created_on"`
	Likes           int64     `json:"likes"`
	Dislikes        int64     `json:"dislikes"`
	CurrentUserVote *int      `json:"current_user_vote"`
}

type Engine struct {
	store *store.Store
}

func New(s *store.Store) *Engine {
	return &Engine{store: s}
}

const (
	deleteSameVote = `DELETE FROM comment_votes
WHERE account_id = ? AND comment_id = ? AND vote_type = ?`

	// The SELECT doubles as the existence check for the comment.
	upsertVote = `INSERT INTO comment_votes (account_id, comment_id, vote_type)
SELECT ?, id, ? FROM comments WHERE id = ?
ON CONFLICT (account_id, comment_id) DO UPDATE SET vote_type = excluded.vote_type`

	tallyQuery = `SELECT
  COUNT(CASE WHEN vote_type = 1 THEN 1 END) AS likes,
  COUNT(CASE WHEN vote_type = -1 THEN 1 END) AS dislikes,
  MAX(CASE WHEN account_id = ? THEN vote_type END) AS current_user_vote
FROM comment_votes
WHERE comment_id = ?`

	listQuery = `SELECT
  comments.id,
  comments.restaurant_id,
  comments.account_id,
  COALESCE(accounts.name, '') AS name,
  comments.text,
  comments.rating,
  comments.created_on,
  COUNT(CASE WHEN comment_votes.vote_type = 1 THEN 1 END) AS likes,
  COUNT(CASE WHEN comment_votes.vote_type = -1 THEN 1 END) AS dislikes,
  MAX(CASE WHEN comment_votes.account_id = ? THEN comment_votes.vote_type END) AS current_user_vote
FROM comments
LEFT JOIN accounts ON comments.account_id = accounts.id
LEFT JOIN comment_votes ON comments.id = comment_votes.comment_id
WHERE comments.restaurant_id = ?
GROUP BY comments.id
ORDER BY comments.created_on DESC`
)

// Apply toggles accountID's vote on commentID and returns the resulting tally.
//
//	current   +1        -1
//	none      liked     disliked
//	liked     none      disliked
//	disliked  liked     none
//
// The delete runs first so the transaction takes the write lock before it reads,
// which serializes concurrent toggles on the same pair.
func (e *Engine) Apply(ctx context.Context, accountID uuid.UUID, commentID uint, vote int) (Tally, error) {
	if vote != models.VoteLike && vote != models.VoteDislike {
		return Tally{}, apperr.InvalidInput("vote must be 1 or -1")
	}

	var tally Tally
	err := e.store.Tx(ctx, func(tx *gorm.DB) error {
		res := tx.Exec(deleteSameVote, accountID, commentID, vote)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			res = tx.Exec(upsertVote, accountID, vote, commentID)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return apperr.NotFound("comment not found")
			}
		}
		return tx.Raw(tallyQuery, accountID, commentID).Scan(&tally).Error
	})
	if err != nil {
		return Tally{}, err
	}
	return tally, nil
}

// Get returns the tally for commentID without changing anything.
func (e *Engine) Get(ctx context.Context, accountID uuid.UUID, commentID uint) (Tally, error) {
	var tally Tally
	err := e.store.Do(ctx, func(db *gorm.DB) error {
		return db.Raw(tallyQuery, accountID, commentID).Scan(&tally).Error
	})
	return tally, err
}

// List returns a restaurant's comments with tallies from accountID's point of view.
func (e *Engine) List(ctx context.Context, accountID uuid.UUID, restaurantID uint) ([]CommentView, error) {
	views := []CommentView{}
	err := e.store.Do(ctx, func(db *gorm.DB) error {
		return db.Raw(listQuery, accountID, restaurantID).Scan(&views).Error
	})
	if err != nil {
		return nil, err
	}
	return views, nil
}
