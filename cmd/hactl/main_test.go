package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type serviceCall struct {
	Path    string
	Payload map[string]any
}

// fakeHomeAssistant serves a small home and records every service call.
type fakeHomeAssistant struct {
	mu    sync.Mutex
	calls []serviceCall
}

func (f *fakeHomeAssistant) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Authorization") != "Bearer test-token" {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/api/states":
		json.NewEncoder(w).Encode([]map[string]any{
			{"entity_id": "light.living_room", "state": "off", "attributes": map[string]any{"friendly_name": "Living Room Light"}},
			{"entity_id": "switch.desk_lamp", "state": "on", "attributes": map[string]any{"friendly_name": "Desk Lamp"}},
			{"entity_id": "scene.movie_night", "state": "scening", "attributes": map[string]any{"friendly_name": "Movie Night"}},
			{"entity_id": "sensor.bedroom_temperature", "state": "21.5", "attributes": map[string]any{
				"friendly_name":       "Bedroom Temperature",
				"unit_of_measurement": "°C",
			}},
		})
	case r.Method == http.MethodPost && strings.HasPrefix(r.URL.Path, "/api/services/"):
		var payload map[string]any
		json.NewDecoder(r.Body).Decode(&payload)
		f.mu.Lock()
		f.calls = append(f.calls, serviceCall{Path: r.URL.Path, Payload: payload})
		f.mu.Unlock()
		w.Write([]byte(`[]`))
	default:
		http.NotFound(w, r)
	}
}

func writeConfig(t *testing.T, haURL string, extra string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "home_assistant:\n  url: " + haURL + "\n  token: test-token\n" +
		"cache:\n  backend: none\n" +
		"log:\n  level: error\n" + extra
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestRun_ChainedCommands(t *testing.T) {
	ha := &fakeHomeAssistant{}
	server := httptest.NewServer(ha)
	defer server.Close()
	cfgPath := writeConfig(t, server.URL, "")

	out, err := execute(t, "--config", cfgPath, "run",
		"homeassistant living room light red && homeassistant scene movie night on && homeassistant desk lamp 40%")

	require.Error(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Set Living Room Light color to rgb(255,0,0)", lines[0])
	assert.Equal(t, "Activated scene Movie Night", lines[1])
	assert.Contains(t, lines[2], "switch.desk_lamp")

	ha.mu.Lock()
	defer ha.mu.Unlock()
	require.Len(t, ha.calls, 2)

	paths := []string{ha.calls[0].Path, ha.calls[1].Path}
	assert.ElementsMatch(t, []string{"/api/services/light/turn_on", "/api/services/scene/turn_on"}, paths)
}

func TestRun_SingleCommand(t *testing.T) {
	ha := &fakeHomeAssistant{}
	server := httptest.NewServer(ha)
	defer server.Close()
	cfgPath := writeConfig(t, server.URL, "")

	out, err := execute(t, "--config", cfgPath, "run", "homeassistant", "desk", "lamp", "off")

	require.NoError(t, err)
	assert.Equal(t, "Turned off Desk Lamp\n", out)
	require.Len(t, ha.calls, 1)
	assert.Equal(t, "/api/services/switch/turn_off", ha.calls[0].Path)
	assert.Equal(t, "switch.desk_lamp", ha.calls[0].Payload["entity_id"])
}

func TestRun_DomainRestriction(t *testing.T) {
	ha := &fakeHomeAssistant{}
	server := httptest.NewServer(ha)
	defer server.Close()
	cfgPath := writeConfig(t, server.URL, "dispatcher:\n  domains: [automation, light, switch]\n")

	out, err := execute(t, "--config", cfgPath, "run", "homeassistant movie night on")

	require.Error(t, err)
	assert.Contains(t, out, "I couldn't find a close match for 'movie night'")
	assert.Empty(t, ha.calls)
}

func TestState(t *testing.T) {
	server := httptest.NewServer(&fakeHomeAssistant{})
	defer server.Close()
	cfgPath := writeConfig(t, server.URL, "")

	out, err := execute(t, "--config", cfgPath, "state", "bedroom", "temperature")

	require.NoError(t, err)
	assert.Equal(t, "Bedroom Temperature is 21.5 °C (sensor.bedroom_temperature, similarity 1.00)\n", out)
}

func TestEntities(t *testing.T) {
	server := httptest.NewServer(&fakeHomeAssistant{})
	defer server.Close()
	cfgPath := writeConfig(t, server.URL, "")

	out, err := execute(t, "--config", cfgPath, "entities", "--domain", "light")

	require.NoError(t, err)
	assert.Contains(t, out, "light.living_room")
	assert.NotContains(t, out, "switch.desk_lamp")
}

func TestMissingConfig(t *testing.T) {
	_, err := execute(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"), "entities")
	assert.ErrorContains(t, err, "loading config")
}
