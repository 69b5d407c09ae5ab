package remoteclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/marcus/qn/internal/models"
	"github.com/marcus/qn/internal/remote"
)

func testRecord() *models.NoteRecord {
	return &models.NoteRecord{
		ID:        "n-abc123",
		Title:     "hello",
		Content:   "world",
		Color:     models.DefaultColor,
		CreatedAt: 100,
		UpdatedAt: 100,
	}
}

func TestInsertSendsAuthAndBody(t *testing.T) {
	var gotAuth, gotDevice string
	var gotBody models.NoteRecord
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" || r.URL.Path != "/v1/notes" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		gotDevice = r.Header.Get("X-Device-ID")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := New(srv.URL, "key-123", "dev-1")
	if err := c.Insert(context.Background(), testRecord()); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if gotAuth != "Bearer key-123" {
		t.Errorf("auth header = %q", gotAuth)
	}
	if gotDevice != "dev-1" {
		t.Errorf("device header = %q", gotDevice)
	}
	if gotBody.ID != "n-abc123" || gotBody.Title != "hello" {
		t.Errorf("body mismatch: %+v", gotBody)
	}
}

func TestUpdateMapsNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"code": "not_found", "message": "no such note"})
	}))
	defer srv.Close()

	c := New(srv.URL, "", "")
	err := c.Update(context.Background(), testRecord())
	if !errors.Is(err, remote.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestServerErrorsAreTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(srv.URL, "", "")
	if err := c.Delete(context.Background(), "n-x"); !errors.Is(err, remote.ErrRemoteUnavailable) {
		t.Fatalf("5xx err = %v, want ErrRemoteUnavailable", err)
	}
	if _, err := c.FetchAll(context.Background()); !errors.Is(err, remote.ErrRemoteUnavailable) {
		t.Fatalf("5xx fetch err = %v, want ErrRemoteUnavailable", err)
	}
}

func TestTransportFailureIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	c := New(srv.URL, "", "")
	if err := c.Insert(context.Background(), testRecord()); !errors.Is(err, remote.ErrRemoteUnavailable) {
		t.Fatalf("transport err = %v, want ErrRemoteUnavailable", err)
	}
}

func TestUnauthorizedIsNotTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := New(srv.URL, "bad-key", "")
	err := c.Insert(context.Background(), testRecord())
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}
	if errors.Is(err, remote.ErrRemoteUnavailable) {
		t.Fatal("auth failure must not be classified as transient")
	}
}

func TestFetchAllDecodes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "GET" || r.URL.Path != "/v1/notes" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		json.NewEncoder(w).Encode([]models.NoteRecord{
			{ID: "n-1", Title: "a", CreatedAt: 1, UpdatedAt: 1},
			{ID: "n-2", Title: "b", CreatedAt: 2, UpdatedAt: 2},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, "", "")
	recs, err := c.FetchAll(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(recs) != 2 || recs[0].ID != "n-1" || recs[1].ID != "n-2" {
		t.Fatalf("decode mismatch: %+v", recs)
	}
}

func TestSubscribeDeliversChangeFrames(t *testing.T) {
	upgrader := websocket.Upgrader{}
	frames := make(chan struct{}, 4)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/notes/watch" {
			http.NotFound(w, r)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()
		for range frames {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(`{}`)); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	var seen atomic.Int32
	c := New(srv.URL, "", "")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	stop, err := c.Subscribe(ctx, func() { seen.Add(1) })
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer stop()

	frames <- struct{}{}
	frames <- struct{}{}

	deadline := time.After(3 * time.Second)
	for seen.Load() < 2 {
		select {
		case <-deadline:
			t.Fatalf("saw %d change notifications, want 2", seen.Load())
		case <-time.After(5 * time.Millisecond):
		}
	}
	close(frames)
}
