package view_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garnizeh/staffboard/internal/view"
	"github.com/garnizeh/staffboard/pkg/models"
)

func flashCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == view.FlashCookieName {
			return c
		}
	}
	return nil
}

func TestFlashStore_WriteRead(t *testing.T) {
	store := view.NewFlashStore("secret", false)
	msgs := []models.Message{models.Success("Poll created."), models.Error("Title is required.")}

	rec := httptest.NewRecorder()
	require.NoError(t, store.Write(rec, msgs))

	c := flashCookie(t, rec)
	require.NotNil(t, c)
	assert.True(t, c.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(c)
	assert.Equal(t, msgs, store.Read(req))
}

func TestFlashStore_RejectsForeignCookies(t *testing.T) {
	store := view.NewFlashStore("secret", false)
	other := view.NewFlashStore("other", false)

	rec := httptest.NewRecorder()
	require.NoError(t, other.Write(rec, []models.Message{models.Success("hi")}))
	c := flashCookie(t, rec)
	require.NotNil(t, c)

	tests := []struct {
		name  string
		value string
	}{
		{name: "other secret", value: c.Value},
		{name: "tampered", value: c.Value + "x"},
		{name: "garbage", value: "not-a-token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.AddCookie(&http.Cookie{Name: view.FlashCookieName, Value: tt.value})
			assert.Empty(t, store.Read(req))

			_, err := store.Decode(tt.value)
			assert.Error(t, err)
		})
	}
}

func TestFlashStore_EmptyWriteClears(t *testing.T) {
	store := view.NewFlashStore("secret", true)

	rec := httptest.NewRecorder()
	require.NoError(t, store.Write(rec, nil))

	c := flashCookie(t, rec)
	require.NotNil(t, c)
	assert.Equal(t, -1, c.MaxAge)
	assert.True(t, c.Secure)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Nil(t, store.Read(req))
}
