package push

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"githubPushRelay/internal/config"

	"github.com/sideshow/apns2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeAPNs(t *testing.T, handler http.HandlerFunc) *APNs {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewAPNs(&apns2.Client{Host: srv.URL, HTTPClient: srv.Client()}, "com.example.mdtalkman")
}

func TestAPNs_Push(t *testing.T) {
	var gotPath, gotTopic, gotPushType string
	var body map[string]any
	gw := fakeAPNs(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotTopic = r.Header.Get("apns-topic")
		gotPushType = r.Header.Get("apns-push-type")
		raw, _ := io.ReadAll(r.Body)
		json.Unmarshal(raw, &body)
		w.Header().Set("apns-id", "6B0E4C9D-1B0B-4E21-9C47-3B1C6A5E7F00")
		w.WriteHeader(http.StatusOK)
	})

	msg := BuildMessage(markdownPush)
	receipt, err := gw.Push(context.Background(), "abc123", msg)

	require.NoError(t, err)
	assert.True(t, receipt.Accepted())
	assert.Equal(t, "6B0E4C9D-1B0B-4E21-9C47-3B1C6A5E7F00", receipt.MessageID)
	assert.Equal(t, "/3/device/abc123", gotPath)
	assert.Equal(t, "com.example.mdtalkman", gotTopic)
	assert.Equal(t, "alert", gotPushType)

	aps := body["aps"].(map[string]any)
	alert := aps["alert"].(map[string]any)
	assert.Equal(t, "Markdown updated", alert["title"])
	assert.Equal(t, float64(1), aps["badge"])
	assert.Equal(t, "default", aps["sound"])
	assert.Equal(t, "push", body["event_type"])
	assert.Equal(t, "notes", body["repository_name"])
	assert.Equal(t, float64(7), body["installation_id"])
	assert.Equal(t, true, body["has_markdown_changes"])
	assert.Equal(t, []any{"README.md"}, body["changed_files"])
}

func TestAPNs_Rejection(t *testing.T) {
	gw := fakeAPNs(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"reason":"BadDeviceToken"}`)
	})

	receipt, err := gw.Push(context.Background(), "bad", BuildMessage(markdownPush))

	require.NoError(t, err)
	assert.False(t, receipt.Accepted())
	assert.Equal(t, http.StatusBadRequest, receipt.StatusCode)
	assert.Equal(t, "BadDeviceToken", receipt.Reason)
}

func TestAPNs_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	gw := NewAPNs(&apns2.Client{Host: url, HTTPClient: http.DefaultClient}, "com.example.mdtalkman")

	_, err := gw.Push(context.Background(), "tok", BuildMessage(markdownPush))
	assert.Error(t, err)
}

func TestNewAPNsFromConfig_MissingKeyFile(t *testing.T) {
	cfg := &config.Config{
		APNsBundleID:    "com.example.mdtalkman",
		APNsKeyID:       "KEY",
		APNsTeamID:      "TEAM",
		APNsAuthKeyPath: t.TempDir() + "/missing.p8",
	}
	_, err := NewAPNsFromConfig(cfg)
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "apns auth key"))
}

func TestNewAPNsFromConfig_MissingCertificate(t *testing.T) {
	cfg := &config.Config{
		APNsBundleID: "com.example.mdtalkman",
		APNsCertPath: t.TempDir() + "/missing.pem",
	}
	_, err := NewAPNsFromConfig(cfg)
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "apns certificate"))
}
