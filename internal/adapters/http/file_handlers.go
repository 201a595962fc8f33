package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/pairpad/pairpad/internal/domain"
	"github.com/pairpad/pairpad/internal/store"
)

type FileAPI struct {
	DB *store.Postgres
}

func (a *FileAPI) List(c *gin.Context) {
	roomID := c.Query("roomId")
	if roomID == "" {
		roomID = "default"
	}
	files, err := a.DB.ListFiles(c.Request.Context(), domain.RoomID(roomID))
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("file list")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list files"})
		return
	}
	if files == nil {
		files = []domain.File{}
	}
	c.JSON(http.StatusOK, files)
}

func (a *FileAPI) Create(c *gin.Context) {
	var req struct {
		Name     string `json:"name" binding:"required"`
		Language string `json:"language"`
		Folder   string `json:"folder"`
		RoomID   string `json:"roomId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}
	if req.RoomID == "" {
		req.RoomID = "default"
	}

	f, err := a.DB.CreateFile(c.Request.Context(), domain.RoomID(req.RoomID), req.Name, req.Language, req.Folder)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("file create")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create file"})
		return
	}
	c.JSON(http.StatusOK, f)
}

func (a *FileAPI) Save(c *gin.Context) {
	var req struct {
		Content string `json:"content"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad payload"})
		return
	}

	f, err := a.DB.SaveFile(c.Request.Context(), c.Param("id"), req.Content)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "file not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not save file"})
		return
	}
	c.JSON(http.StatusOK, f)
}

func (a *FileAPI) Delete(c *gin.Context) {
	if err := a.DB.DeleteFile(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "file not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete file"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "file deleted"})
}
