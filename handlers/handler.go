package handlers

import (
	"log"
	"strconv"

	"food-marketplace-api/access"
	"food-marketplace-api/apperr"
	"food-marketplace-api/cart"
	"food-marketplace-api/middleware"
	"food-marketplace-api/orders"
	"food-marketplace-api/store"
	"food-marketplace-api/votes"

	"github.com/gin-gonic/gin"
)

// Handler holds every collaborator the HTTP layer needs
type Handler struct {
	Store     *store.Store
	Access    *access.Evaluator
	Votes     *votes.Engine
	Cart      *cart.Engine
	Orders    *orders.Service
	Auth      *middleware.Auth
	UploadDir string
}

func New(s *store.Store, auth *middleware.Auth, uploadDir string) *Handler {
	evaluator := access.New(access.NewStoreLookup(s))
	return &Handler{
		Store:     s,
		Access:    evaluator,
		Votes:     votes.New(s),
		Cart:      cart.New(s),
		Orders:    orders.New(s, evaluator),
		Auth:      auth,
		UploadDir: uploadDir,
	}
}

// respondError writes the public form of err; infra causes only go to the log
func respondError(c *gin.Context, err error) {
	if apperr.CodeOf(err) == apperr.CodeInfra {
		log.Printf("%s %s: %v", c.Request.Method, c.FullPath(), err)
	}
	c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.PublicMessage(err)})
}

// guard runs the access check and writes the response when it fails
func (h *Handler) guard(c *gin.Context, action access.Action, restaurantID uint) bool {
	err := h.Access.Check(c.Request.Context(), middleware.GetAccountID(c), action, restaurantID)
	if err != nil {
		respondError(c, err)
		return false
	}
	return true
}

func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		respondError(c, apperr.InvalidInput("invalid id"))
		return 0, false
	}
	return uint(id), true
}
