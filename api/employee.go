package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/garnizeh/staffboard/internal/session"
	"github.com/garnizeh/staffboard/internal/validation"
	"github.com/garnizeh/staffboard/internal/view"
	"github.com/garnizeh/staffboard/pkg/models"
	"github.com/garnizeh/staffboard/pkg/repository"
)

const duplicateUsernameMessage = "A user with that username already exists."

type EmployeeHandler struct {
	userRepo    repository.UserRepo
	profileRepo repository.ProfileRepo
	view        *view.Renderer
	sessions    *session.Manager
}

// NewEmployeeHandler creates a new EmployeeHandler with required dependencies.
func NewEmployeeHandler(ur repository.UserRepo, pr repository.ProfileRepo, v *view.Renderer, sm *session.Manager) *EmployeeHandler {
	return &EmployeeHandler{userRepo: ur, profileRepo: pr, view: v, sessions: sm}
}

type registerData struct {
	Username  string
	FirstName string
	LastName  string
	Errors    map[string][]string
}

type profileData struct {
	Profile *models.Profile
}

type profileEditData struct {
	Profile *models.Profile
	Salary  string
}

func (h *EmployeeHandler) Home(w http.ResponseWriter, r *http.Request) {
	h.view.Render(w, r, "home", nil)
}

func (h *EmployeeHandler) Register(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.view.Render(w, r, "register", registerData{})
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	reg := validation.Registration{
		Username:  strings.TrimSpace(r.PostForm.Get("username")),
		Password1: r.PostForm.Get("password1"),
		Password2: r.PostForm.Get("password2"),
		FirstName: strings.TrimSpace(r.PostForm.Get("first_name")),
		LastName:  strings.TrimSpace(r.PostForm.Get("last_name")),
	}
	data := registerData{Username: reg.Username, FirstName: reg.FirstName, LastName: reg.LastName}

	if err := validation.ValidateRegistration(reg); err != nil {
		var ve *validation.ValidationError
		if errors.As(err, &ve) {
			data.Errors = ve.ByField()
		}
		h.view.Render(w, r, "register", data)
		return
	}

	// Hash password
	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password1), bcrypt.DefaultCost)
	if err != nil {
		h.view.InternalError(w, r, fmt.Errorf("hash password: %w", err))
		return
	}

	ctx := r.Context()

	user := models.User{
		Username:     reg.Username,
		FirstName:    reg.FirstName,
		LastName:     reg.LastName,
		PasswordHash: string(hash),
	}
	// user and blank profile are written together
	userID, err := h.userRepo.CreateUserWithProfile(ctx, &user, models.Profile{})
	if errors.Is(err, repository.ErrDuplicateUsername) {
		data.Errors = map[string][]string{"username": {duplicateUsernameMessage}}
		h.view.Render(w, r, "register", data)
		return
	}
	if err != nil {
		h.view.InternalError(w, r, fmt.Errorf("create user: %w", err))
		return
	}

	if err := h.sessions.Issue(w, userID); err != nil {
		h.view.InternalError(w, r, err)
		return
	}

	h.view.Redirect(w, r, "/profile", models.Success("Account created successfully."))
}

// Profile shows the current user's profile. A user without one sees an empty
// page; no profile is created here.
func (h *EmployeeHandler) Profile(w http.ResponseWriter, r *http.Request) {
	user := session.UserFromContext(r.Context())

	profile, err := h.profileRepo.GetProfileByUserID(r.Context(), user.ID)
	if err != nil {
		h.view.InternalError(w, r, fmt.Errorf("get profile: %w", err))
		return
	}

	h.view.Render(w, r, "profile", profileData{Profile: profile})
}

// ProfileEdit updates designation and salary. A missing designation field
// keeps the stored value while a blank one clears it; an empty salary keeps
// the stored value and a non-numeric one rejects the whole submission.
func (h *EmployeeHandler) ProfileEdit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := session.UserFromContext(ctx)

	profile, _, err := h.profileRepo.GetOrCreateProfile(ctx, user.ID, models.Profile{})
	if err != nil {
		h.view.InternalError(w, r, fmt.Errorf("get profile: %w", err))
		return
	}
	data := profileEditData{Profile: profile, Salary: strconv.FormatInt(profile.Salary, 10)}

	if r.Method != http.MethodPost {
		h.view.Render(w, r, "profile_edit", data)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	if _, ok := r.PostForm["designation"]; ok {
		profile.Designation = r.PostForm.Get("designation")
	}

	raw := r.PostForm.Get("salary")
	salary, keep, err := validation.ParseSalary(raw)
	if err != nil {
		data.Salary = raw
		h.view.Render(w, r, "profile_edit", data, models.Error("Salary must be a number."))
		return
	}
	if !keep {
		profile.Salary = salary
	}

	if err := h.profileRepo.UpdateProfile(ctx, profile); err != nil {
		h.view.InternalError(w, r, fmt.Errorf("update profile: %w", err))
		return
	}

	h.view.Redirect(w, r, "/profile", models.Success("Profile updated."))
}
