package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/MKhiriev/go-plan-keeper/internal/logger"
	"github.com/MKhiriev/go-plan-keeper/internal/utils"
	"github.com/MKhiriev/go-plan-keeper/models"
)

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var user models.User
	if err := json.NewDecoder(r.Body).Decode(&user); err != nil {
		log.Err(err).Msg("Invalid JSON was passed")
		utils.WriteError(w, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}

	registeredUser, err := h.services.AuthService.RegisterUser(ctx, user)
	if err != nil {
		log.Err(err).Str("login", user.Login).Msg("user registration failed")
		writeServiceError(w, err)
		return
	}

	h.writeSession(w, r, registeredUser)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var user models.User
	if err := json.NewDecoder(r.Body).Decode(&user); err != nil {
		log.Err(err).Msg("Invalid JSON was passed")
		utils.WriteError(w, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}

	foundUser, err := h.services.AuthService.Login(ctx, user)
	if err != nil {
		log.Err(err).Str("login", user.Login).Msg("user login failed")
		writeServiceError(w, err)
		return
	}

	log.Debug().Int64("id", foundUser.UserID).Msg("user successfully logged in")
	h.writeSession(w, r, foundUser)
}

func (h *Handler) refresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var req models.RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Msg("Invalid JSON was passed")
		utils.WriteError(w, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}

	user, refreshToken, err := h.services.AuthService.Refresh(ctx, req.RefreshToken)
	if err != nil {
		log.Err(err).Msg("refresh token exchange failed")
		writeServiceError(w, err)
		return
	}

	token, err := h.services.AuthService.CreateToken(ctx, user)
	if err != nil {
		log.Err(err).Msg("creation of token failed")
		writeServiceError(w, err)
		return
	}

	writeAuthResponse(w, user, token, refreshToken)
}

// session confirms the access token and reports the current account status.
func (h *Handler) session(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		log.Error().Err(ErrNoUserInContext).Send()
		utils.WriteError(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	user, err := h.services.AuthService.GetUser(ctx, userID)
	if err != nil {
		log.Err(err).Int64("user_id", userID).Msg("session lookup failed")
		// a token of a deleted user is as good as no token
		if statusFromError(err) == http.StatusNotFound {
			utils.WriteError(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}
		writeServiceError(w, err)
		return
	}

	_, _ = utils.WriteJSON(w, models.AuthResponse{
		UserID: user.UserID,
		Login:  user.Login,
		Status: user.Status,
	}, http.StatusOK)
}

// writeSession issues an access and a refresh token for user.
func (h *Handler) writeSession(w http.ResponseWriter, r *http.Request, user models.User) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	token, err := h.services.AuthService.CreateToken(ctx, user)
	if err != nil {
		log.Err(err).Msg("creation of token failed")
		writeServiceError(w, err)
		return
	}

	refreshToken, err := h.services.AuthService.IssueRefreshToken(ctx, user)
	if err != nil {
		log.Err(err).Msg("creation of refresh token failed")
		writeServiceError(w, err)
		return
	}

	writeAuthResponse(w, user, token, refreshToken)
}

func writeAuthResponse(w http.ResponseWriter, user models.User, token models.Token, refreshToken string) {
	resp := models.AuthResponse{
		UserID:       user.UserID,
		Login:        user.Login,
		Status:       user.Status,
		RefreshToken: refreshToken,
	}
	if token.ExpiresAt != nil {
		resp.ExpiresAt = token.ExpiresAt.Time
	}

	w.Header().Set("Authorization", fmt.Sprintf("Bearer %s", token.SignedString))
	_, _ = utils.WriteJSON(w, resp, http.StatusOK)
}
