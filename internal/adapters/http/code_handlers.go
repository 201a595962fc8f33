package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/pairpad/pairpad/internal/exec"
)

type CodeAPI struct {
	Runner *exec.Client
}

func (a *CodeAPI) Execute(c *gin.Context) {
	var req struct {
		Language string `json:"language" binding:"required"`
		Code     string `json:"code" binding:"required"`
		Stdin    string `json:"stdin"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "language and code are required"})
		return
	}
	if !exec.Supported(req.Language) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported language"})
		return
	}

	res, err := a.Runner.Run(c.Request.Context(), req.Language, req.Code, req.Stdin)
	if err != nil {
		if errors.Is(err, exec.ErrUnsupportedLanguage) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported language"})
			return
		}
		log.Error().Err(err).Str("module", "adapters.http").Msg("code execute")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to execute code"})
		return
	}
	c.JSON(http.StatusOK, res)
}
