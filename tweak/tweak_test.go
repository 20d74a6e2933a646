package tweak

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/openhuman/facegraph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPanel(t *testing.T) (*Panel, *facegraph.Material) {

	panel := NewPanel()
	mat := facegraph.NewMaterial("face")
	mat.Roughness = 0.5

	folder := panel.Folder("face")

	_, err := folder.Add(mat, "Roughness", 0, 1, 0.01)
	require.NoError(t, err)
	_, err = folder.Add(mat, "Transparent", 0, 0, 0)
	require.NoError(t, err)
	_, err = folder.AddColor("Color", mat.Color)
	require.NoError(t, err)

	return panel, mat

}

func TestAddRejectsBadFields(t *testing.T) {

	panel := NewPanel()
	folder := panel.Folder("f")
	mat := facegraph.NewMaterial("m")

	_, err := folder.Add(*mat, "Roughness", 0, 1, 0)
	assert.Error(t, err, "not a pointer")

	_, err = folder.Add(mat, "Nope", 0, 1, 0)
	assert.Error(t, err, "missing field")

	_, err = folder.Add(mat, "Name", 0, 1, 0)
	assert.Error(t, err, "strings aren't supported")

	_, err = folder.Add(mat, "Roughness", 0, 1, 0)
	require.NoError(t, err)
	_, err = folder.Add(mat, "Roughness", 0, 1, 0)
	assert.Error(t, err, "duplicate")

	assert.Same(t, folder, panel.Folder("f"))

}

func TestEditsWaitForApply(t *testing.T) {

	panel, mat := testPanel(t)

	require.NoError(t, panel.Set("face", "Roughness", 0.25))
	require.NoError(t, panel.Set("face", "Transparent", true))
	require.NoError(t, panel.Set("face", "Color", "#FF0000"))

	assert.Equal(t, 0.5, mat.Roughness, "edits aren't written until Apply")
	assert.Equal(t, 3, panel.Pending())

	changed := 0
	panel.byKey["face/Roughness"].OnChange(func() { changed++ })

	assert.Equal(t, 3, panel.Apply())
	assert.Equal(t, 0.25, mat.Roughness)
	assert.True(t, mat.Transparent)
	assert.Equal(t, "#ff0000", mat.Color.Hex())
	assert.Equal(t, float32(1), mat.Color.A)
	assert.Equal(t, 1, changed)
	assert.Equal(t, 0, panel.Pending())

	s, ok := panel.Control("face", "Roughness")
	require.True(t, ok)
	assert.Equal(t, 0.25, s.Value)

}

func TestSetValidates(t *testing.T) {

	panel, mat := testPanel(t)

	assert.ErrorIs(t, panel.Set("face", "Missing", 1.0), ErrUnknownControl)
	assert.ErrorIs(t, panel.Set("face", "Roughness", "high"), ErrBadValue)
	assert.ErrorIs(t, panel.Set("face", "Transparent", 1.0), ErrBadValue)
	assert.ErrorIs(t, panel.Set("face", "Color", "red"), ErrBadValue)

	require.NoError(t, panel.Set("face", "Roughness", 4.0))
	panel.Apply()
	assert.Equal(t, 1.0, mat.Roughness, "numbers are clamped to the slider's range")

}

func TestSelectAndNumberAccessors(t *testing.T) {

	panel := NewPanel()
	folder := panel.Folder("scene")

	env := "None"
	_, err := folder.AddSelect("Environment", []string{"None", "Venice Sunset"}, func() string { return env }, func(s string) { env = s })
	require.NoError(t, err)

	influences := []float64{0, 0}
	_, err = folder.AddNumber("smile", 0, 1, 0.01, func() float64 { return influences[1] }, func(v float64) { influences[1] = v })
	require.NoError(t, err)

	assert.ErrorIs(t, panel.Set("scene", "Environment", "Moon"), ErrBadValue)
	require.NoError(t, panel.Set("scene", "Environment", "Venice Sunset"))
	require.NoError(t, panel.Set("scene", "smile", 0.75))
	panel.Apply()

	assert.Equal(t, "Venice Sunset", env)
	assert.Equal(t, []float64{0, 0.75}, influences)

	panel.Remove("scene")
	assert.Empty(t, panel.Controls())
	assert.ErrorIs(t, panel.Set("scene", "smile", 0.5), ErrUnknownControl)

}

func TestHTTPAPI(t *testing.T) {

	panel, mat := testPanel(t)
	server := httptest.NewServer(panel.Handler())
	defer server.Close()

	resp, err := http.Get(server.URL + "/api/controls")
	require.NoError(t, err)
	var states []State
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&states))
	resp.Body.Close()
	require.Len(t, states, 3)
	assert.Equal(t, "Roughness", states[0].Name)
	assert.Equal(t, KindNumber, states[0].Kind)
	assert.Equal(t, 0.5, states[0].Value)

	put := func(path, body string) int {
		req, err := http.NewRequest(http.MethodPut, server.URL+path, strings.NewReader(body))
		require.NoError(t, err)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		return resp.StatusCode
	}

	assert.Equal(t, http.StatusAccepted, put("/api/controls/face/Roughness", `{"value": 0.75}`))
	assert.Equal(t, http.StatusNotFound, put("/api/controls/face/Missing", `{"value": 0.75}`))
	assert.Equal(t, http.StatusBadRequest, put("/api/controls/face/Roughness", `{"value": "x"}`))
	assert.Equal(t, http.StatusBadRequest, put("/api/controls/face/Roughness", `{`))

	panel.Apply()
	assert.Equal(t, 0.75, mat.Roughness)

	resp, err = http.Get(server.URL + "/api/controls/face/Roughness")
	require.NoError(t, err)
	var s State
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&s))
	resp.Body.Close()
	assert.Equal(t, 0.75, s.Value)

	resp, err = http.Get(server.URL + "/api/controls/face/Missing")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

}

func TestWebsocketPushesChanges(t *testing.T) {

	panel, mat := testPanel(t)
	server := httptest.NewServer(panel.Handler())
	defer server.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http")+"/api/ws", nil)
	require.NoError(t, err)
	defer conn.Close()

	read := func() message {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
		var msg message
		require.NoError(t, conn.ReadJSON(&msg))
		return msg
	}

	first := read()
	assert.Equal(t, "controls", first.Type)
	assert.Len(t, first.Controls, 3)

	// Changed from code rather than the panel; Sync picks it up.
	mat.Roughness = 0.1
	panel.Sync()

	update := read()
	assert.Equal(t, "update", update.Type)
	require.Len(t, update.Controls, 1)
	assert.Equal(t, "Roughness", update.Controls[0].Name)
	assert.Equal(t, 0.1, update.Controls[0].Value)

}

func TestServe(t *testing.T) {

	panel, _ := testPanel(t)
	s, err := panel.Serve("127.0.0.1:0")
	require.NoError(t, err)

	resp, err := http.Get("http://" + s.Addr().String() + "/api/controls")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.NoError(t, s.Close(ctx))

}
