package controller

import (
	"crypto/subtle"
	"errors"
	"net/http"

	"github.com/syncroom/server/internal/service/auth"
	"github.com/syncroom/server/pkg/rest"
)

type registerRequest struct {
	Username string `json:"username" validate:"required,min=3,max=20"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	IsAdmin  bool   `json:"is_admin"`
}

func (c controller) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := rest.ReadJSON(r, &req); err != nil {
		c.logger.DebugContext(r.Context(), "failed to read json", "error", err)
		rest.WriteJSON(w, http.StatusUnprocessableEntity, rest.Envelope{"error": err.Error()})
		return
	}

	if validationErrors, ok := c.validate.Validate(req); !ok {
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"validation_errors": validationErrors})
		return
	}

	if err := c.authService.Register(r.Context(), &auth.RegisterParams{
		Username: req.Username,
		Password: req.Password,
		IsAdmin:  req.IsAdmin,
	}); err != nil {
		switch {
		case errors.Is(err, auth.ErrUsernameTaken):
			rest.WriteJSON(w, http.StatusConflict, rest.Envelope{"error": err.Error()})
		case errors.Is(err, auth.ErrAdminLimitReached):
			rest.WriteJSON(w, http.StatusConflict, rest.Envelope{"error": err.Error()})
		default:
			c.logger.ErrorContext(r.Context(), "failed to register", "error", err)
			rest.WriteJSON(w, http.StatusInternalServerError, rest.Envelope{"error": "internal server error"})
		}
		return
	}

	rest.WriteJSON(w, http.StatusCreated, rest.Envelope{"username": req.Username})
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (c controller) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := rest.ReadJSON(r, &req); err != nil {
		c.logger.DebugContext(r.Context(), "failed to read json", "error", err)
		rest.WriteJSON(w, http.StatusUnprocessableEntity, rest.Envelope{"error": err.Error()})
		return
	}

	if validationErrors, ok := c.validate.Validate(req); !ok {
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"validation_errors": validationErrors})
		return
	}

	loginResponse, err := c.authService.Login(r.Context(), &auth.LoginParams{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredential) {
			rest.WriteJSON(w, http.StatusUnauthorized, rest.Envelope{"error": err.Error()})
			return
		}

		c.logger.ErrorContext(r.Context(), "failed to login", "error", err)
		rest.WriteJSON(w, http.StatusInternalServerError, rest.Envelope{"error": "internal server error"})
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{
		"token":    loginResponse.Token,
		"is_admin": loginResponse.IsAdmin,
	})
}

type broadcastRequest struct {
	Message string `json:"message" validate:"required,max=500"`
}

// broadcastMessage lets an operator push an announcement into the room. It
// is guarded by a shared secret instead of a user token.
func (c controller) broadcastMessage(w http.ResponseWriter, r *http.Request) {
	secret := r.Header.Get("X-Broadcast-Secret")
	if c.cfg.BroadcastSecret == "" ||
		subtle.ConstantTimeCompare([]byte(secret), []byte(c.cfg.BroadcastSecret)) != 1 {
		rest.WriteJSON(w, http.StatusForbidden, rest.Envelope{"error": "forbidden"})
		return
	}

	var req broadcastRequest
	if err := rest.ReadJSON(r, &req); err != nil {
		c.logger.DebugContext(r.Context(), "failed to read json", "error", err)
		rest.WriteJSON(w, http.StatusUnprocessableEntity, rest.Envelope{"error": err.Error()})
		return
	}

	if validationErrors, ok := c.validate.Validate(req); !ok {
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"validation_errors": validationErrors})
		return
	}

	c.roomService.BroadcastServerMessage(req.Message)

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"status": "ok"})
}
