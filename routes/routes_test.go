package routes

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"p9e.in/towerpro/handlers"
	"p9e.in/towerpro/middleware"
	"p9e.in/towerpro/pkg/attachments"
	"p9e.in/towerpro/pkg/blob"
	"p9e.in/towerpro/pkg/drafts"
	"p9e.in/towerpro/pkg/store"
	"p9e.in/towerpro/pkg/wizard"
)

func newApp(t *testing.T) (http.Handler, string) {
	t.Helper()
	log, _ := test.NewNullLogger()
	dir := t.TempDir()
	local, err := blob.NewLocalStore(dir, "/uploads")
	require.NoError(t, err)

	docs := store.NewMemoryStore()
	mgr := wizard.NewManager(docs, drafts.NewPersister(docs, nil, log), attachments.NewUploader(local, log), log)
	t.Cleanup(mgr.Close)

	return RegisterRoutes(App{
		Reports:   handlers.NewReportHandler(mgr, docs, handlers.StaticRoster(nil), log),
		Roster:    handlers.StaticRoster(nil),
		Log:       log,
		UploadDir: dir,
	}), dir
}

func TestRoutes(t *testing.T) {
	middleware.SetSigningKey("routes-secret")
	token, err := middleware.GenerateToken("user-1", "inspector", "Dana Reyes", "5550100")
	require.NoError(t, err)
	h, dir := newApp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("hi"), 0o644))

	call := func(method, path string, auth bool) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, nil)
		if auth {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, call("GET", "/healthz", false).Code)
	assert.Equal(t, "hi", call("GET", "/uploads/a.txt", false).Body.String())
	assert.Equal(t, http.StatusUnauthorized, call("GET", "/api/v1/reports", false).Code)

	rec := call("POST", "/api/v1/reports", true)
	require.Equal(t, http.StatusCreated, rec.Code)
	var st wizard.State
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))

	assert.Equal(t, http.StatusOK, call("GET", "/api/v1/reports/"+st.ReportID+"/wizard", true).Code)
	assert.Equal(t, http.StatusOK, call("POST", "/api/v1/reports/"+st.ReportID+"/wizard/next", true).Code)
	assert.Equal(t, http.StatusOK, call("GET", "/api/v1/reports", true).Code)
	assert.Equal(t, http.StatusOK, call("GET", "/api/v1/inspectors", true).Code)
	assert.Equal(t, http.StatusNotFound, call("DELETE", "/api/v1/reports/"+st.ReportID+"/wizard/photos/basin/x", true).Code)

	rec = call("GET", "/api/v1/profile", true)
	assert.Contains(t, rec.Body.String(), "Dana Reyes")
}
