package handlers

import (
	"net/http"

	"hubspot-proxy/internal/oauth2"
)

type loginResponse struct {
	Message          string   `json:"message"`
	AuthorizationURL string   `json:"authorizationUrl"`
	Instructions     []string `json:"instructions"`
}

type callbackResponse struct {
	Message       string         `json:"message"`
	Authenticated bool           `json:"authenticated"`
	Tokens        *oauth2.Tokens `json:"tokens"`
	NextSteps     []string       `json:"nextSteps"`
}

type statusResponse struct {
	Authenticated bool   `json:"authenticated"`
	Message       string `json:"message"`
}

type logoutResponse struct {
	Message       string `json:"message"`
	Authenticated bool   `json:"authenticated"`
}

// HandleLogin returns the HubSpot consent URL
func (h *Handlers) HandleLogin(w http.ResponseWriter, r *http.Request) {
	h.sendJSON(w, http.StatusOK, loginResponse{
		Message:          "Visit this URL to authenticate",
		AuthorizationURL: h.auth.AuthorizationURL(),
		Instructions: []string{
			"Copy the URL above",
			"Open it in your browser",
			"Login and authorize",
			"You will be redirected to callback",
		},
	})
}

// HandleCallback exchanges the code HubSpot redirected back with
func (h *Handlers) HandleCallback(w http.ResponseWriter, r *http.Request) {
	code := h.sanitize(r.URL.Query().Get("code"))

	tokens, err := h.auth.ExchangeCode(r.Context(), code)
	if err != nil {
		h.sendJSONError(w, r, err, "Authorization callback failed")
		return
	}

	h.sendJSON(w, http.StatusOK, callbackResponse{
		Message:       "Authentication successful!",
		Authenticated: true,
		Tokens:        tokens,
		NextSteps: []string{
			"Check status: GET /auth/status",
			"Get contacts: GET /contacts",
			"Get accounts: GET /accounts",
		},
	})
}

func (h *Handlers) HandleStatus(w http.ResponseWriter, r *http.Request) {
	authenticated, err := h.auth.Status(r.Context())
	if err != nil {
		h.sendJSONError(w, r, err, "Failed to read token status")
		return
	}

	message := "Not authenticated. Visit /auth/login"
	if authenticated {
		message = "You are authenticated"
	}
	h.sendJSON(w, http.StatusOK, statusResponse{Authenticated: authenticated, Message: message})
}

func (h *Handlers) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.Logout(r.Context()); err != nil {
		h.sendJSONError(w, r, err, "Logout failed")
		return
	}
	h.sendJSON(w, http.StatusOK, logoutResponse{Message: "Logged out successfully", Authenticated: false})
}
