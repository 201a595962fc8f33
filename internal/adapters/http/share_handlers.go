package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/pairpad/pairpad/internal/domain"
	"github.com/pairpad/pairpad/internal/store"
)

type ShareAPI struct {
	DB *store.Postgres
}

func (a *ShareAPI) Generate(c *gin.Context) {
	var req struct {
		Language string `json:"language" binding:"required"`
		Code     string `json:"code" binding:"required"`
		Stdin    string `json:"stdin"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "language and code are required"})
		return
	}

	s, err := a.DB.CreateSnippet(c.Request.Context(), req.Language, req.Code, req.Stdin)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("share generate")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not save code"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": s.ID, "message": "code saved"})
}

func (a *ShareAPI) Get(c *gin.Context) {
	s, err := a.DB.GetSnippet(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "code not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load code"})
		return
	}
	c.JSON(http.StatusOK, s)
}
