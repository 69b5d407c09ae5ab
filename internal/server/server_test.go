package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/marcus/qn/internal/models"
)

const testAuthKey = "test-key-123"

// newTestServer creates a Server backed by a temp database, exposed
// through an httptest listener.
func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "server.db")
	db, err := OpenDB(dbPath)
	if err != nil {
		t.Fatalf("open server db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	srv := NewServer(Config{ListenAddr: ":0", DBPath: dbPath, AuthKey: testAuthKey}, db)
	hs := httptest.NewServer(srv.Handler())
	t.Cleanup(hs.Close)
	return srv, hs
}

func doRequest(t *testing.T, method, url string, body any, auth bool) *http.Response {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth {
		req.Header.Set("Authorization", "Bearer "+testAuthKey)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func sampleNote(id string) *models.NoteRecord {
	return &models.NoteRecord{
		ID:        id,
		Title:     "title " + id,
		Content:   "content",
		Color:     models.DefaultColor,
		CreatedAt: 100,
		UpdatedAt: 100,
	}
}

func TestHealthz(t *testing.T) {
	_, hs := newTestServer(t)
	resp := doRequest(t, "GET", hs.URL+"/healthz", nil, false)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("healthz status = %d", resp.StatusCode)
	}
}

func TestAuthRequired(t *testing.T) {
	_, hs := newTestServer(t)

	resp := doRequest(t, "GET", hs.URL+"/v1/notes", nil, false)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("unauthenticated list status = %d, want 401", resp.StatusCode)
	}

	req, _ := http.NewRequest("GET", hs.URL+"/v1/notes", nil)
	req.Header.Set("Authorization", "Bearer wrong-key")
	wrongResp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer wrongResp.Body.Close()
	if wrongResp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("wrong-key status = %d, want 401", wrongResp.StatusCode)
	}
}

func TestInsertIsUpsert(t *testing.T) {
	_, hs := newTestServer(t)

	note := sampleNote("n-1")
	resp := doRequest(t, "POST", hs.URL+"/v1/notes", note, true)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("insert status = %d", resp.StatusCode)
	}

	// Replayed drain: same create again, now with newer content.
	note.Content = "replayed"
	note.UpdatedAt = 200
	resp = doRequest(t, "POST", hs.URL+"/v1/notes", note, true)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("replayed insert status = %d, want 201 (upsert)", resp.StatusCode)
	}

	recs := listNotes(t, hs)
	if len(recs) != 1 {
		t.Fatalf("got %d notes, want 1", len(recs))
	}
	if recs[0].Content != "replayed" || recs[0].UpdatedAt != 200 {
		t.Fatalf("replay did not converge: %+v", recs[0])
	}
}

func TestUpdateMissingIs404(t *testing.T) {
	_, hs := newTestServer(t)

	note := sampleNote("n-ghost")
	resp := doRequest(t, "PUT", hs.URL+"/v1/notes/n-ghost", note, true)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("update missing status = %d, want 404", resp.StatusCode)
	}

	var body apiError
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if body.Code != errCodeNotFound {
		t.Fatalf("error code = %q, want %q", body.Code, errCodeNotFound)
	}
}

func TestUpdateReplacesExisting(t *testing.T) {
	_, hs := newTestServer(t)

	note := sampleNote("n-1")
	doRequest(t, "POST", hs.URL+"/v1/notes", note, true)

	note.Title = "revised"
	note.Color = models.ColorMint
	note.UpdatedAt = 250
	resp := doRequest(t, "PUT", hs.URL+"/v1/notes/n-1", note, true)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update status = %d", resp.StatusCode)
	}

	recs := listNotes(t, hs)
	if recs[0].Title != "revised" || recs[0].Color != models.ColorMint {
		t.Fatalf("update not applied: %+v", recs[0])
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	_, hs := newTestServer(t)

	doRequest(t, "POST", hs.URL+"/v1/notes", sampleNote("n-1"), true)

	for i := 0; i < 2; i++ {
		resp := doRequest(t, "DELETE", hs.URL+"/v1/notes/n-1", nil, true)
		if resp.StatusCode != http.StatusNoContent {
			t.Fatalf("delete attempt %d status = %d, want 204", i, resp.StatusCode)
		}
	}
	if resp := doRequest(t, "DELETE", hs.URL+"/v1/notes/n-never-existed", nil, true); resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete of unknown id status = %d, want 204", resp.StatusCode)
	}
}

func TestListOrderAndValidation(t *testing.T) {
	_, hs := newTestServer(t)

	for i, id := range []string{"n-old", "n-new"} {
		n := sampleNote(id)
		n.CreatedAt = int64(100 * (i + 1))
		n.UpdatedAt = n.CreatedAt
		doRequest(t, "POST", hs.URL+"/v1/notes", n, true)
	}

	recs := listNotes(t, hs)
	if len(recs) != 2 || recs[0].ID != "n-new" || recs[1].ID != "n-old" {
		t.Fatalf("order mismatch: %+v", recs)
	}

	bad := sampleNote("n-bad")
	bad.Color = "plaid"
	resp := doRequest(t, "POST", hs.URL+"/v1/notes", bad, true)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("invalid color status = %d, want 400", resp.StatusCode)
	}

	noID := sampleNote("")
	resp = doRequest(t, "POST", hs.URL+"/v1/notes", noID, true)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("missing id status = %d, want 400", resp.StatusCode)
	}
}

func TestUpdateBodyPathMismatch(t *testing.T) {
	_, hs := newTestServer(t)

	doRequest(t, "POST", hs.URL+"/v1/notes", sampleNote("n-1"), true)
	resp := doRequest(t, "PUT", hs.URL+"/v1/notes/n-2", sampleNote("n-1"), true)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("mismatched update status = %d, want 400", resp.StatusCode)
	}
}

func TestMutationsBroadcastToHub(t *testing.T) {
	srv, hs := newTestServer(t)

	// Stand-in watch client registered directly on the hub.
	c := &wsClient{send: make(chan struct{}, 1)}
	srv.hub.add(c)
	defer srv.hub.remove(c)

	doRequest(t, "POST", hs.URL+"/v1/notes", sampleNote("n-1"), true)
	select {
	case <-c.send:
	default:
		t.Fatal("insert did not broadcast a change frame")
	}

	doRequest(t, "DELETE", hs.URL+"/v1/notes/n-1", nil, true)
	select {
	case <-c.send:
	default:
		t.Fatal("delete did not broadcast a change frame")
	}
}

func listNotes(t *testing.T, hs *httptest.Server) []models.NoteRecord {
	t.Helper()
	resp := doRequest(t, "GET", hs.URL+"/v1/notes", nil, true)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list status = %d", resp.StatusCode)
	}
	var recs []models.NoteRecord
	if err := json.NewDecoder(resp.Body).Decode(&recs); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	return recs
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("QN_SYNC_LISTEN", ":9999")
	t.Setenv("QN_SYNC_AUTH_KEY", "env-key")

	cfg := ConfigFromEnv(Config{ListenAddr: ":8787", DBPath: "x.db", AuthKey: "flag-key"})
	if cfg.ListenAddr != ":9999" {
		t.Errorf("listen = %q", cfg.ListenAddr)
	}
	if cfg.AuthKey != "env-key" {
		t.Errorf("auth key = %q", cfg.AuthKey)
	}
	if cfg.DBPath != "x.db" {
		t.Errorf("db path = %q", cfg.DBPath)
	}
}
