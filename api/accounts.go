package api

import (
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/garnizeh/staffboard/internal/session"
	"github.com/garnizeh/staffboard/internal/view"
	"github.com/garnizeh/staffboard/pkg/models"
	"github.com/garnizeh/staffboard/pkg/repository"
)

const invalidLoginMessage = "Please enter a correct username and password."

type AccountsHandler struct {
	userRepo repository.UserRepo
	view     *view.Renderer
	sessions *session.Manager
}

// NewAccountsHandler creates a new AccountsHandler with required dependencies.
func NewAccountsHandler(ur repository.UserRepo, v *view.Renderer, sm *session.Manager) *AccountsHandler {
	return &AccountsHandler{userRepo: ur, view: v, sessions: sm}
}

type loginData struct {
	Username string
	Next     string
}

// safeNext returns next when it is a local path, and "" otherwise.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return ""
	}
	return next
}

func (h *AccountsHandler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.view.Render(w, r, "login", loginData{Next: safeNext(r.URL.Query().Get("next"))})
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	data := loginData{
		Username: strings.TrimSpace(r.PostForm.Get("username")),
		Next:     safeNext(r.PostForm.Get("next")),
	}
	password := r.PostForm.Get("password")
	if data.Username == "" || password == "" {
		h.view.Render(w, r, "login", data, models.Error(invalidLoginMessage))
		return
	}

	user, err := h.userRepo.GetUserByUsername(r.Context(), data.Username)
	if err != nil {
		h.view.InternalError(w, r, fmt.Errorf("get user: %w", err))
		return
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		h.view.Render(w, r, "login", data, models.Error(invalidLoginMessage))
		return
	}

	if err := h.sessions.Issue(w, user.ID); err != nil {
		h.view.InternalError(w, r, err)
		return
	}

	dest := data.Next
	if dest == "" {
		dest = "/profile"
	}
	http.Redirect(w, r, dest, http.StatusSeeOther)
}

func (h *AccountsHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Clear(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
