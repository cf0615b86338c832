package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/playdex/claim-core/internal/core/domain"
	"github.com/playdex/claim-core/internal/core/ports/driving"
)

// SessionCookieName is the cookie carrying the signed session token.
const SessionCookieName = "claim_session"

// ErrorResponse represents an API error response
// @Description API error response
type ErrorResponse struct {
	Error string `json:"error" example:"invalid request body"`
}

// StatusResponse represents a simple status response
// @Description Simple status response
type StatusResponse struct {
	Status string `json:"status" example:"ok"`
}

// VersionResponse represents the API version response
// @Description API version response
type VersionResponse struct {
	Version string `json:"version" example:"1.0.0"`
}

// MeResponse describes the authenticated identity
// @Description Authenticated session summary
type MeResponse struct {
	SubjectID string    `json:"subject_id" example:"8412993"`
	Handle    string    `json:"handle" example:"devx"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Health endpoints

// handleHealth godoc
// @Summary      Health check
// @Description  Returns the health status of the API
// @Tags         Health
// @Produce      json
// @Success      200  {object}  StatusResponse
// @Router       /health [get]
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReady godoc
// @Summary      Readiness check
// @Description  Returns the readiness status of the API (checks database and Redis connections)
// @Tags         Health
// @Produce      json
// @Success      200  {object}  StatusResponse
// @Failure      503  {object}  ErrorResponse  "A backend is unreachable"
// @Router       /ready [get]
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.db != nil {
		if err := s.db.Ping(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
	}
	if s.redisClient != nil {
		if err := s.redisClient.Ping(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "redis unavailable")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// handleVersion godoc
// @Summary      Get API version
// @Description  Returns the current API version
// @Tags         Health
// @Produce      json
// @Success      200  {object}  VersionResponse
// @Router       /version [get]
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": s.version})
}

// Flow endpoints

// handleLogin godoc
// @Summary      Start authorization
// @Description  Creates a pending attempt and redirects to the identity provider. Pass game_id and game_slug to claim a game after login.
// @Tags         Auth
// @Param        game_id    query  string  false  "Game to claim"
// @Param        game_slug  query  string  false  "Slug of the game to claim"
// @Success      302  "Redirect to the provider authorization URL"
// @Failure      500  {object}  ErrorResponse  "Failed to start the flow"
// @Router       /auth/login [get]
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	req := driving.StartAuthRequest{
		GameID:   r.URL.Query().Get("game_id"),
		GameSlug: r.URL.Query().Get("game_slug"),
	}

	resp, err := s.flowService.StartAuth(r.Context(), req)
	if errors.Is(err, domain.ErrGameNotFound) {
		// A browser navigation; send it to the error page, not JSON.
		http.Redirect(w, r, domain.FailureRedirect(domain.FailureGameNotFound, ""), http.StatusFound)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to start authorization")
		return
	}

	http.Redirect(w, r, resp.AuthorizationURL, http.StatusFound)
}

// handleCallback godoc
// @Summary      Authorization callback
// @Description  Receives the provider redirect, completes the flow, and redirects to the outcome page. Sets the session cookie on success.
// @Tags         Auth
// @Param        code   query  string  false  "Authorization code"
// @Param        state  query  string  false  "State correlation token"
// @Param        error  query  string  false  "Provider error code"
// @Success      302  "Redirect to the outcome page"
// @Router       /auth/callback [get]
func (s *Server) handleCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	result := s.flowService.HandleCallback(r.Context(), driving.CallbackRequest{
		Code:             q.Get("code"),
		State:            q.Get("state"),
		Error:            q.Get("error"),
		ErrorDescription: q.Get("error_description"),
	})

	if result.SessionToken != "" {
		s.setSessionCookie(w, result.SessionToken)
	}

	http.Redirect(w, r, result.RedirectTarget, http.StatusFound)
}

// Session endpoints

// handleLogout godoc
// @Summary      Logout
// @Description  Deletes the session and clears the session cookie. Always succeeds.
// @Tags         Auth
// @Produce      json
// @Success      200  {object}  StatusResponse
// @Router       /auth/logout [post]
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if token := extractSessionToken(r); token != "" {
		_ = s.sessionService.Logout(r.Context(), token)
	}
	s.clearSessionCookie(w)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleRefresh godoc
// @Summary      Refresh session
// @Description  Rotates the provider access token via the refresh grant
// @Tags         Auth
// @Produce      json
// @Success      200  {object}  MeResponse
// @Failure      401  {object}  ErrorResponse  "Session missing, expired, or not refreshable"
// @Router       /auth/refresh [post]
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	token := extractSessionToken(r)
	if token == "" {
		writeError(w, http.StatusUnauthorized, "no session")
		return
	}

	session, err := s.sessionService.Refresh(r.Context(), token)
	if err != nil {
		s.clearSessionCookie(w)
		writeError(w, http.StatusUnauthorized, "refresh failed")
		return
	}

	writeJSON(w, http.StatusOK, sessionSummary(session))
}

// handleMe godoc
// @Summary      Current identity
// @Description  Returns the authenticated session summary
// @Tags         Auth
// @Produce      json
// @Success      200  {object}  MeResponse
// @Failure      401  {object}  ErrorResponse  "Unauthorized"
// @Router       /auth/me [get]
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	session := GetSession(r.Context())
	if session == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	writeJSON(w, http.StatusOK, sessionSummary(session))
}

func sessionSummary(session *domain.Session) MeResponse {
	return MeResponse{
		SubjectID: session.SubjectID,
		Handle:    session.Handle,
		ExpiresAt: session.ExpiresAt,
	}
}

// Cookie helpers

func (s *Server) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
