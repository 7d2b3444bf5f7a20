package meeting

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestZoom(t *testing.T, handler http.Handler) (*ZoomService, *httptest.Server) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	z := NewZoomService(Config{
		AccountID:    "acct-1",
		ClientID:     "client-1",
		ClientSecret: "secret-1",
	})
	z.tokenEndpoint = srv.URL + "/oauth/token"
	z.meetingEndpoint = srv.URL + "/v2/users/me/meetings"
	return z, srv
}

func TestCreateMeeting(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.True(t, strings.HasPrefix(r.Header.Get("Authorization"), "Basic "))
		assert.Equal(t, "account_credentials", r.URL.Query().Get("grant_type"))
		assert.Equal(t, "acct-1", r.URL.Query().Get("account_id"))
		json.NewEncoder(w).Encode(map[string]string{"access_token": "tok-123"})
	})
	mux.HandleFunc("/v2/users/me/meetings", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))

		var payload map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "Speech session", payload["topic"])
		assert.Equal(t, float64(45), payload["duration"])
		assert.Equal(t, "Europe/Berlin", payload["timezone"])

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":       97531,
			"join_url": "https://zoom.us/j/97531",
			"password": "s3cret",
		})
	})

	z, _ := newTestZoom(t, mux)
	m, err := z.CreateMeeting(context.Background(), &CreateMeetingRequest{
		Topic:     "Speech session",
		StartTime: time.Now().Add(time.Hour),
		Duration:  45,
		Timezone:  "Europe/Berlin",
	})

	require.NoError(t, err)
	assert.Equal(t, int64(97531), m.MeetingID)
	assert.Equal(t, "https://zoom.us/j/97531", m.JoinURL)
	assert.Equal(t, "s3cret", m.Password)
}

func TestCreateMeetingDefaults(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"access_token": "tok-123"})
	})
	mux.HandleFunc("/v2/users/me/meetings", func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, float64(30), payload["duration"])
		assert.Equal(t, "UTC", payload["timezone"])

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]interface{}{"id": 1, "join_url": "https://zoom.us/j/1"})
	})

	z, _ := newTestZoom(t, mux)
	_, err := z.CreateMeeting(context.Background(), &CreateMeetingRequest{
		Topic:     "Checkup",
		StartTime: time.Now().Add(time.Hour),
	})

	require.NoError(t, err)
}

func TestCreateMeetingTokenFailure(t *testing.T) {
	z, _ := newTestZoom(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))

	_, err := z.CreateMeeting(context.Background(), &CreateMeetingRequest{
		Topic:     "Checkup",
		StartTime: time.Now().Add(time.Hour),
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}
