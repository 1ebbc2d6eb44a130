package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mkaranov/brospace/internal/common"
	"github.com/mkaranov/brospace/internal/server/models"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "OK"})
}

// --- auth ---

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	user, err := s.users.Register(r.Context(), req.Email, req.Password, req.Username)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrEmailTaken):
			s.writeError(w, r, http.StatusConflict, err.Error(), codeEmailTaken)
		case errors.Is(err, common.ErrWeakPassword):
			s.writeError(w, r, http.StatusBadRequest, err.Error(), codeWeakPassword)
		default:
			s.writeError(w, r, http.StatusInternalServerError, err.Error(), "")
		}
		return
	}

	s.logger.Info(r.Context(), "Registered", "user_id", user.ID)
	s.writeJSON(w, http.StatusCreated, registerResponse{
		UserID:           user.ID,
		EmailConfirmedAt: user.EmailConfirmedAt,
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	user, pair, err := s.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrUnauthorized) {
			s.writeError(w, r, http.StatusUnauthorized, "invalid email or password", "")
			return
		}
		s.writeError(w, r, http.StatusInternalServerError, "internal error", "")
		return
	}

	s.writeJSON(w, http.StatusOK, tokenResponse{
		UserID:       user.ID,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	pair, err := s.users.RefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrRefreshTokenExpired):
			s.writeError(w, r, http.StatusUnauthorized, err.Error(), codeTokenExpired)
		case errors.Is(err, common.ErrUnauthorized):
			s.writeError(w, r, http.StatusUnauthorized, "unknown refresh token", codeInvalidToken)
		default:
			s.writeError(w, r, http.StatusInternalServerError, err.Error(), "")
		}
		return
	}

	s.writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	var req logoutRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	if err := s.users.Logout(r.Context(), req.RefreshToken); err != nil {
		s.writeError(w, r, http.StatusInternalServerError, err.Error(), "")
		return
	}

	s.logger.Info(r.Context(), "Signed out", "user_id", userIDFromContext(r.Context()))
	w.WriteHeader(http.StatusNoContent)
}

// handleSession lets clients probe whether their access token still names a
// live identity, e.g. when resuming a persisted session on startup.
func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, sessionResponse{UserID: userIDFromContext(r.Context())})
}

// --- profiles ---

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id != userIDFromContext(r.Context()) {
		s.writeError(w, r, http.StatusForbidden, "profile belongs to another user", "")
		return
	}

	profile, err := s.profiles.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			s.writeError(w, r, http.StatusNotFound, "profile not found", codeProfileNotFound)
			return
		}
		s.writeError(w, r, http.StatusInternalServerError, err.Error(), "")
		return
	}

	s.writeJSON(w, http.StatusOK, toProfileResponse(profile))
}

// handleEnsureProfile creates the caller's default profile row if it does
// not exist yet and returns the row either way.
func (s *Server) handleEnsureProfile(w http.ResponseWriter, r *http.Request) {
	var req createProfileRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	profile, err := s.profiles.Ensure(r.Context(), userIDFromContext(r.Context()), req.Username)
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, err.Error(), "")
		return
	}

	s.writeJSON(w, http.StatusCreated, toProfileResponse(profile))
}

func (s *Server) handlePatchProfile(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id != userIDFromContext(r.Context()) {
		s.writeError(w, r, http.StatusForbidden, "profile belongs to another user", "")
		return
	}

	var req patchProfileRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	patch := &models.ProfilePatch{
		Username:      req.Username,
		Age:           req.Age,
		MoodStreak:    req.MoodStreak,
		JoinedCircles: req.JoinedCircles,
		LastActive:    req.LastActive,
	}

	if err := s.profiles.Update(r.Context(), id, patch); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			s.writeError(w, r, http.StatusNotFound, "profile not found", codeProfileNotFound)
			return
		}
		s.writeError(w, r, http.StatusInternalServerError, err.Error(), "")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// --- mood entries ---

func (s *Server) handleCreateMoodEntry(w http.ResponseWriter, r *http.Request) {
	var req createMoodEntryRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	entry, err := s.moods.Create(r.Context(), userIDFromContext(r.Context()),
		req.Mood, req.MoodLevel, req.JournalEntry, req.IsAnonymous)
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, err.Error(), "")
		return
	}

	s.writeJSON(w, http.StatusCreated, toMoodEntryResponse(entry))
}

func (s *Server) handleListMoodEntries(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			s.writeError(w, r, http.StatusBadRequest, "limit must be an integer", codeValidation)
			return
		}
		limit = parsed
	}

	entries, err := s.moods.List(r.Context(), userIDFromContext(r.Context()), limit)
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, err.Error(), "")
		return
	}

	resp := moodEntryListResponse{Entries: make([]moodEntryResponse, 0, len(entries))}
	for _, e := range entries {
		resp.Entries = append(resp.Entries, toMoodEntryResponse(e))
	}
	s.writeJSON(w, http.StatusOK, resp)
}
