package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/pairpad/pairpad/internal/domain"
	"github.com/pairpad/pairpad/internal/store"
)

type RoomAPI struct {
	DB *store.Postgres
}

func (a *RoomAPI) Create(c *gin.Context) {
	var req struct {
		RoomID   string `json:"roomId" binding:"required"`
		Identity string `json:"identity" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "roomId and identity are required"})
		return
	}
	if len(req.RoomID) > domain.MaxRoomIDLen || !domain.ValidIdentity(req.Identity) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "roomId or identity out of bounds"})
		return
	}

	room, err := a.DB.CreateRoom(c.Request.Context(), domain.RoomID(req.RoomID), req.Identity)
	if err != nil {
		if errors.Is(err, domain.ErrRoomTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": "room id already taken"})
			return
		}
		log.Error().Err(err).Str("module", "adapters.http").Msg("room create")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create room"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"room": room})
}

func (a *RoomAPI) Get(c *gin.Context) {
	room, err := a.DB.GetRoom(c.Request.Context(), domain.RoomID(c.Param("roomId")))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load room"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"roomId": room.ID, "host": room.HostIdentity})
}
