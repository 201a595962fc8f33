package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog/log"

	"github.com/pairpad/pairpad/internal/auth"
	"github.com/pairpad/pairpad/internal/domain"
	"github.com/pairpad/pairpad/internal/store"
)

type AuthAPI struct {
	DB       *store.Postgres
	JWT      *auth.JWT
	TokenTTL time.Duration
}

type credentials struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email"`
	Password string `json:"password" binding:"required"`
}

func (a *AuthAPI) Register(c *gin.Context) {
	var req credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
		return
	}

	u, err := a.DB.CreateUser(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.Is(err, domain.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid username or password"})
		case errors.As(err, &pgErr) && pgErr.Code == "23505":
			c.JSON(http.StatusConflict, gin.H{"error": "username already taken"})
		default:
			log.Error().Err(err).Str("module", "adapters.http").Msg("register")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create account"})
		}
		return
	}

	tok, err := a.JWT.Sign(u.Username, a.TokenTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue token"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": u, "token": tok})
}

func (a *AuthAPI) Login(c *gin.Context) {
	var req credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
		return
	}

	u, err := a.DB.VerifyUser(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	tok, err := a.JWT.Sign(u.Username, a.TokenTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": u, "token": tok})
}

func (a *AuthAPI) Me(c *gin.Context) {
	identity := c.GetString(identityCtxKey)
	u, _, err := a.DB.GetUser(c.Request.Context(), identity)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "account not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": u})
}
