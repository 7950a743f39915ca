package web

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mogaika/glevel_browser/assets"
	"github.com/mogaika/glevel_browser/pack/glevel"
	"github.com/mogaika/glevel_browser/status"
	"github.com/mogaika/glevel_browser/vfs"
)

const caveLevel = "Cave\n2x2\nvsize=2,sound=sfx/drip.ogg\nW|.|.|W\nW,texture=tiles/rock.png\n.,air\n"

func newTestServer(t *testing.T) (*Server, string) {
	levels := t.TempDir()
	assetRoot := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(levels, "cave.glevel"), []byte(caveLevel), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(levels, "broken.glevel"), []byte("Broken\naxb\n\nA\nA,air\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(levels, "readme.txt"), []byte("-"), 0644))
	require.NoError(t, os.MkdirAll(filepath.Join(assetRoot, "tiles"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(assetRoot, "tiles", "rock.png"), []byte("png"), 0644))

	hub := status.NewHub()
	t.Cleanup(hub.Close)
	return NewServer(vfs.NewDirectoryDriver(levels), vfs.NewDirectoryDriver(assetRoot), hub, 2), levels
}

func get(t *testing.T, s *Server, url string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest("GET", url, nil))
	return rec
}

func upload(t *testing.T, s *Server, name string, data string) *httptest.ResponseRecorder {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("data", name)
	require.NoError(t, err)
	_, err = part.Write([]byte(data))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", "/upload/level/"+name, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func TestListLevels(t *testing.T) {
	s, _ := newTestServer(t)
	rec := get(t, s, "/json/levels")
	require.Equal(t, http.StatusOK, rec.Code)

	var names []string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &names))
	assert.Equal(t, []string{"broken.glevel", "cave.glevel"}, names)
}

func TestGetLevel(t *testing.T) {
	s, _ := newTestServer(t)
	rec := get(t, s, "/json/level/cave.glevel")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res glevel.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "Cave", res.Level.Name)
	assert.Equal(t, []glevel.BlockIndex{0, 1, 1, 0}, res.Level.Tiles.Cells)
	assert.Equal(t, glevel.Air, res.Level.Blocks[1].Interaction.Kind)
	assert.Equal(t, []string{"sfx/drip.ogg", "tiles/rock.png"}, res.Dependencies)
}

func TestGetLevelErrors(t *testing.T) {
	s, _ := newTestServer(t)

	rec := get(t, s, "/json/level/broken.glevel")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var body struct {
		Error string `json:"error"`
		Line  int    `json:"line"`
		Field *int   `json:"field"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body.Error, "invalid dimensions")
	assert.Equal(t, 2, body.Line)
	require.NotNil(t, body.Field)
	assert.Equal(t, 0, *body.Field)

	assert.Equal(t, http.StatusNotFound, get(t, s, "/json/level/missing.glevel").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, s, "/json/level/readme.txt").Code)
}

func TestLevelDeps(t *testing.T) {
	s, _ := newTestServer(t)
	rec := get(t, s, "/json/level/cave.glevel/deps")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var report assets.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, []string{"sfx/drip.ogg"}, report.Missing())
}

func TestActions(t *testing.T) {
	s, _ := newTestServer(t)

	rec := get(t, s, "/action/cave.glevel/asyaml")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "cave.yaml")
	assert.Contains(t, rec.Body.String(), "name: Cave")

	rec = get(t, s, "/action/cave.glevel/encode")
	require.Equal(t, http.StatusOK, rec.Code)
	res, err := glevel.Parse(rec.Body.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "Cave", res.Level.Name)

	rec = get(t, s, "/action/cave.glevel/dump")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Cave")

	assert.Equal(t, http.StatusNotFound, get(t, s, "/action/cave.glevel/explode").Code)
}

func TestDumpRaw(t *testing.T) {
	s, _ := newTestServer(t)
	rec := get(t, s, "/dump/level/cave.glevel")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, caveLevel, rec.Body.String())
}

func TestUpload(t *testing.T) {
	s, levels := newTestServer(t)

	rec := upload(t, s, "new.glevel", "New\n1x1\n\nA\nA,air\n")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	data, err := os.ReadFile(filepath.Join(levels, "new.glevel"))
	require.NoError(t, err)
	assert.Equal(t, "New\n1x1\n\nA\nA,air\n", string(data))

	rec = upload(t, s, "cave.glevel", "Cave\n2x2\n\nA|A\nA,air\n")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "tile count mismatch"))
	data, err = os.ReadFile(filepath.Join(levels, "cave.glevel"))
	require.NoError(t, err)
	assert.Equal(t, caveLevel, string(data))
}
