package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/wikidex/favorites"
	"github.com/use-agent/wikidex/models"
)

// ListFavorites returns a handler for GET /api/v1/favorites[?tab_type=].
func ListFavorites(store *favorites.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := store.List(c.Query("tab_type"))
		if err != nil {
			respondError(c, err)
			return
		}
		respondOK(c, http.StatusOK, list)
	}
}

// AddFavorite returns a handler for POST /api/v1/favorites.
func AddFavorite(store *favorites.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.FavoriteRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			abortInvalid(c, err.Error())
			return
		}
		f, err := store.Add(req)
		if errors.Is(err, favorites.ErrInvalid) {
			abortInvalid(c, err.Error())
			return
		}
		if err != nil {
			respondError(c, err)
			return
		}
		respondOK(c, http.StatusCreated, f)
	}
}

// RemoveFavorite returns a handler for DELETE /api/v1/favorites/:id.
func RemoveFavorite(store *favorites.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		err := store.Remove(c.Param("id"))
		switch {
		case errors.Is(err, favorites.ErrNotFound):
			respondError(c, models.NewFetchError(models.ErrCodeNotFound, "favorite not found", err))
		case err != nil:
			respondError(c, err)
		default:
			c.Status(http.StatusNoContent)
		}
	}
}
