package api_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/require"

	"github.com/garnizeh/staffboard/api"
	"github.com/garnizeh/staffboard/internal/session"
	"github.com/garnizeh/staffboard/internal/view"
	"github.com/garnizeh/staffboard/pkg/models"
	"github.com/garnizeh/staffboard/pkg/repository/mock"
)

const testSecret = "test-secret"

type testServer struct {
	store    *mock.Store
	router   http.Handler
	sessions *session.Manager
	flash    *view.FlashStore
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	flash := view.NewFlashStore(testSecret, false)
	renderer, err := view.New(flash, nil)
	require.NoError(t, err)

	store := mock.NewStore()
	sessions := session.NewManager(testSecret, time.Hour, false)
	router := api.NewRouter(api.Services{
		Users:     store,
		Profiles:  store,
		Questions: store,
		Choices:   store,
		View:      renderer,
		Sessions:  sessions,
	}, "test", "now")

	return &testServer{store: store, router: router, sessions: sessions, flash: flash}
}

func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

// as attaches a session cookie for user to req.
func (s *testServer) as(t *testing.T, req *http.Request, user *models.User) *http.Request {
	t.Helper()
	if user == nil {
		return req
	}
	rec := httptest.NewRecorder()
	require.NoError(t, s.sessions.Issue(rec, user.ID))
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

func (s *testServer) addUser(staff bool) *models.User {
	return s.store.AddUser(models.User{Username: gofakeit.Username(), FirstName: gofakeit.FirstName(), IsStaff: staff})
}

// flashes decodes the messages a redirect stored for the next page.
func (s *testServer) flashes(t *testing.T, rec *httptest.ResponseRecorder) []models.Message {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == view.FlashCookieName && c.Value != "" {
			msgs, err := s.flash.Decode(c.Value)
			require.NoError(t, err)
			return msgs
		}
	}
	return nil
}

func get(path string) *http.Request {
	return httptest.NewRequest(http.MethodGet, path, nil)
}

func post(path string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func day(s string) *time.Time {
	t, err := time.Parse(models.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return &t
}
