package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"hubspot-proxy/internal/crm"
)

// GetContacts returns one page of contacts
func (h *Handlers) GetContacts(w http.ResponseWriter, r *http.Request) {
	findPage(h, w, r, h.contacts, "Failed to list contacts")
}

// GetContact returns one contact by id
func (h *Handlers) GetContact(w http.ResponseWriter, r *http.Request) {
	findOne(h, w, r, h.contacts, "Failed to get contact")
}

// GetAccounts returns one page of accounts
func (h *Handlers) GetAccounts(w http.ResponseWriter, r *http.Request) {
	findPage(h, w, r, h.accounts, "Failed to list accounts")
}

// GetAccount returns one account by id
func (h *Handlers) GetAccount(w http.ResponseWriter, r *http.Request) {
	findOne(h, w, r, h.accounts, "Failed to get account")
}

func findPage[T any](h *Handlers, w http.ResponseWriter, r *http.Request, finder Finder[T], logMsg string) {
	filter, err := crm.ParseFilter(h.sanitizeQuery(r.URL.Query()))
	if err != nil {
		h.sendJSONError(w, r, err, logMsg)
		return
	}

	page, err := finder.FindPage(r.Context(), filter)
	if err != nil {
		h.sendJSONError(w, r, err, logMsg)
		return
	}
	h.sendJSON(w, http.StatusOK, page)
}

func findOne[T any](h *Handlers, w http.ResponseWriter, r *http.Request, finder Finder[T], logMsg string) {
	id := h.sanitize(mux.Vars(r)["id"])

	record, err := finder.FindOne(r.Context(), id)
	if err != nil {
		h.sendJSONError(w, r, err, logMsg)
		return
	}
	h.sendJSON(w, http.StatusOK, record)
}
