package api_test

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/garnizeh/staffboard/api"
	"github.com/garnizeh/staffboard/internal/session"
	"github.com/garnizeh/staffboard/pkg/models"
)

func sessionCookie(rec interface{ Result() *http.Response }) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == session.CookieName {
			return c
		}
	}
	return nil
}

func TestLogin(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	require.NoError(t, err)

	tests := []struct {
		name         string
		form         url.Values
		wantStatus   int
		wantLocation string
	}{
		{
			name:         "Success",
			form:         url.Values{"username": {"bob"}, "password": {"hunter2"}},
			wantStatus:   http.StatusSeeOther,
			wantLocation: "/profile",
		},
		{
			name:         "SuccessWithNext",
			form:         url.Values{"username": {" bob "}, "password": {"hunter2"}, "next": {"/poll/3/"}},
			wantStatus:   http.StatusSeeOther,
			wantLocation: "/poll/3/",
		},
		{
			name:         "ExternalNextIgnored",
			form:         url.Values{"username": {"bob"}, "password": {"hunter2"}, "next": {"//evil.example/"}},
			wantStatus:   http.StatusSeeOther,
			wantLocation: "/profile",
		},
		{
			name:       "WrongPassword",
			form:       url.Values{"username": {"bob"}, "password": {"nope"}},
			wantStatus: http.StatusOK,
		},
		{
			name:       "UnknownUser",
			form:       url.Values{"username": {"carol"}, "password": {"hunter2"}},
			wantStatus: http.StatusOK,
		},
		{
			name:       "MissingPassword",
			form:       url.Values{"username": {"bob"}},
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)
			s.store.AddUser(models.User{Username: "bob", PasswordHash: string(hash)})

			rec := s.do(post(api.LoginURL, tt.form))
			require.Equal(t, tt.wantStatus, rec.Code)

			if tt.wantStatus == http.StatusSeeOther {
				assert.Equal(t, tt.wantLocation, rec.Header().Get("Location"))
				assert.NotNil(t, sessionCookie(rec))
				return
			}
			assert.Contains(t, rec.Body.String(), "Please enter a correct username and password.")
			assert.Nil(t, sessionCookie(rec))
		})
	}
}

func TestLogin_GetCarriesNext(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(get(api.LoginURL + "?next=%2Fprofile%2Fedit"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `name="next" value="/profile/edit"`)
}

func TestLogout(t *testing.T) {
	s := newTestServer(t)
	user := s.addUser(false)

	rec := s.do(s.as(t, post("/accounts/logout/", nil), user))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
	c := sessionCookie(rec)
	require.NotNil(t, c)
	assert.Equal(t, -1, c.MaxAge)

	// logout only accepts POST
	assert.Equal(t, http.StatusMethodNotAllowed, s.do(get("/accounts/logout/")).Code)
}

func TestSafeNext(t *testing.T) {
	tests := map[string]string{
		"":                     "",
		"/profile":             "/profile",
		"/poll/1/?x=1":         "/poll/1/?x=1",
		"//evil.example":       "",
		"/\\evil.example":      "",
		"https://evil.example": "",
		"profile":              "",
	}
	for in, want := range tests {
		assert.Equal(t, want, api.SafeNext(in), "input %q", in)
	}
}
