package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testSettings(baseURL string) Settings {
	return Settings{
		BaseURL:          baseURL,
		Token:            "secret-token",
		Timeout:          2 * time.Second,
		MaxRequests:      3,
		Interval:         time.Minute,
		BreakerTimeout:   30 * time.Second,
		FailureThreshold: 5,
	}
}

func TestSwitchDevice_PostsExpectedRequest(t *testing.T) {
	var gotPath, gotAuth, gotService string
	var gotBody switchRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	gw := New(testSettings(srv.URL), zap.NewNop())
	err := gw.SwitchDevice(context.Background(), "switch.charger", true)
	require.NoError(t, err)

	gotService = gotPath
	require.Equal(t, "/api/services/switch/turn_on", gotService)
	require.Equal(t, "Bearer secret-token", gotAuth)
	require.Equal(t, "switch.charger", gotBody.EntityID)
}

func TestSwitchDevice_TurnOff(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	gw := New(testSettings(srv.URL), zap.NewNop())
	err := gw.SwitchDevice(context.Background(), "switch.plug", false)
	require.NoError(t, err)
	require.Equal(t, "/api/services/switch/turn_off", gotPath)
}

func TestSwitchDevice_NonTwoXXStillSucceeds(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	gw := New(testSettings(srv.URL), zap.NewNop())
	err := gw.SwitchDevice(context.Background(), "switch.plug", true)
	require.NoError(t, err, "non-2xx HTTP status is not itself a transport failure")
}

func TestSwitchDevice_MissingTokenIsSystemError(t *testing.T) {
	gw := New(Settings{BaseURL: "http://example.invalid"}, zap.NewNop())
	err := gw.SwitchDevice(context.Background(), "switch.plug", true)
	require.Error(t, err)
}

func TestSwitchDevice_TransportFailureIsSystemError(t *testing.T) {
	gw := New(testSettings("http://127.0.0.1:0"), zap.NewNop())
	err := gw.SwitchDevice(context.Background(), "switch.plug", true)
	require.Error(t, err)
}
