package handlers

import (
	"net/http"
	"strconv"

	"food-marketplace-api/access"
	"food-marketplace-api/apperr"
	"food-marketplace-api/middleware"
	"food-marketplace-api/models"
	"food-marketplace-api/store"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type CommentRequest struct {
	Text   string `json:"text" binding:"required"`
	Rating int    `json:"rating" binding:"required,min=1,max=5"`
}

// ListComments returns a restaurant's comments with vote tallies for the caller
func (h *Handler) ListComments(c *gin.Context) {
	rid, ok := paramID(c, "id")
	if !ok {
		return
	}
	views, err := h.Votes.List(c.Request.Context(), middleware.GetAccountID(c), rid)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(views), "comments": views})
}

// PostComment adds the caller's single review of a restaurant
func (h *Handler) PostComment(c *gin.Context) {
	rid, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !h.guard(c, access.ActionParticipate, 0) {
		return
	}

	comment := models.Comment{
		RestaurantID: rid,
		AccountID:    middleware.GetAccountID(c),
		Text:         req.Text,
		Rating:       req.Rating,
	}
	err := h.Store.Do(c.Request.Context(), func(db *gorm.DB) error {
		err := db.Create(&comment).Error
		switch {
		case err == nil:
			return nil
		case store.IsUniqueViolation(err):
			return apperr.Conflict("you already commented on this restaurant")
		case store.IsForeignKeyViolation(err):
			return apperr.NotFound("restaurant not found")
		}
		return err
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Comment added", "comment": comment})
}

// DeleteComment removes a comment; only its author or an admin may do so
func (h *Handler) DeleteComment(c *gin.Context) {
	id, ok := paramID(c, "commentId")
	if !ok {
		return
	}
	accountID := middleware.GetAccountID(c)
	isAdmin, err := h.Access.HasRole(c.Request.Context(), accountID, models.RoleAdmin)
	if err != nil {
		respondError(c, err)
		return
	}

	err = h.Store.Do(c.Request.Context(), func(db *gorm.DB) error {
		q := db.Where("id = ?", id)
		if !isAdmin {
			q = q.Where("account_id = ?", accountID)
		}
		res := q.Delete(&models.Comment{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound("comment not found")
		}
		return nil
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Deleted"})
}

// VoteComment toggles the caller's like (vote=1) or dislike (vote=-1)
func (h *Handler) VoteComment(c *gin.Context) {
	id, ok := paramID(c, "commentId")
	if !ok {
		return
	}
	vote, err := strconv.Atoi(c.Query("vote"))
	if err != nil {
		respondError(c, apperr.InvalidInput("vote must be 1 or -1"))
		return
	}
	if !h.guard(c, access.ActionParticipate, 0) {
		return
	}
	tally, err := h.Votes.Apply(c.Request.Context(), middleware.GetAccountID(c), id, vote)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"comment_id": id, "tally": tally})
}
