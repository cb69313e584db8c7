package profiles

import (
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
	"time"

	profilesdomain "telicommunity-go/internal/domain/profiles"
	"telicommunity-go/internal/transport/httpserver/handler/common"
	"telicommunity-go/internal/transport/httpserver/middleware"
)

type setupProfileRequest struct {
	FullName     string `json:"full_name"`
	Username     string `json:"username"`
	Age          int    `json:"age"`
	City         string `json:"city"`
	AvatarBase64 string `json:"avatar_base64"`
	AvatarURL    string `json:"avatar_url"`
}

type profileResponse struct {
	ID        string    `json:"id"`
	FullName  string    `json:"full_name"`
	Username  string    `json:"username"`
	Age       int       `json:"age"`
	City      string    `json:"city"`
	AvatarURL *string   `json:"avatar_url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toProfileResponse(p *profilesdomain.Profile) profileResponse {
	return profileResponse{
		ID:        p.ID,
		FullName:  p.FullName,
		Username:  p.Username,
		Age:       p.Age,
		City:      p.City,
		AvatarURL: p.AvatarURL,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func (h *Handlers) GetMe(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		common.WriteError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	profile, err := h.Profiles.Get(r.Context(), user.ID)
	if err != nil {
		if errors.Is(err, profilesdomain.ErrProfileNotFound) {
			common.WriteError(w, http.StatusNotFound, "profile_not_found", "profile not found")
			return
		}
		h.log.InternalError("profiles.get_me: fetch failed", err, "user_id", user.ID)
		common.WriteError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	common.WriteJSON(w, http.StatusOK, toProfileResponse(profile))
}

func (h *Handlers) PutMe(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		common.WriteError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxAvatarBytes*2)
	var req setupProfileRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	var avatar []byte
	if encoded := strings.TrimSpace(req.AvatarBase64); encoded != "" {
		decoded, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			common.WriteError(w, http.StatusBadRequest, "invalid_avatar", "avatar must be base64 encoded")
			return
		}
		if len(decoded) > maxAvatarBytes {
			common.WriteError(w, http.StatusRequestEntityTooLarge, "avatar_too_large", "avatar is too large")
			return
		}
		avatar = decoded
	}

	avatarURL := strings.TrimSpace(req.AvatarURL)
	if avatarURL == "" {
		avatarURL = user.AvatarURL
	}

	profile, err := h.Profiles.Setup(r.Context(), profilesdomain.SetupInput{
		UserID:    user.ID,
		FullName:  req.FullName,
		Username:  req.Username,
		Age:       req.Age,
		City:      req.City,
		Avatar:    avatar,
		AvatarURL: avatarURL,
	})
	if err != nil {
		switch {
		case errors.Is(err, profilesdomain.ErrFieldsRequired):
			h.log.BusinessError("profiles.setup: missing fields", err, "user_id", user.ID)
			common.WriteError(w, http.StatusBadRequest, "fields_required", "All fields are mandatory")
		case errors.Is(err, profilesdomain.ErrUnderage):
			h.log.BusinessError("profiles.setup: underage", err, "user_id", user.ID)
			common.WriteError(w, http.StatusBadRequest, "underage", "Minimum age is 13 years")
		case errors.Is(err, profilesdomain.ErrUsernameTooShort):
			h.log.BusinessError("profiles.setup: username too short", err, "user_id", user.ID)
			common.WriteError(w, http.StatusBadRequest, "username_too_short", "Username too short")
		case errors.Is(err, profilesdomain.ErrUsernameTaken):
			h.log.BusinessError("profiles.setup: username taken", err, "user_id", user.ID)
			common.WriteError(w, http.StatusConflict, "username_taken", "Username already taken")
		default:
			h.log.InternalError("profiles.setup: save failed", err, "user_id", user.ID)
			common.WriteError(w, http.StatusInternalServerError, "internal_error", "internal error")
		}
		return
	}

	common.WriteJSON(w, http.StatusOK, toProfileResponse(profile))
}
