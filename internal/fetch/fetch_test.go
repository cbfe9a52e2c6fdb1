package fetch_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"framecast/internal/fetch"
)

func TestFetchWritesBody(t *testing.T) {
	payload := bytes.Repeat([]byte("x"), 200*1024)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(payload)
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "image.jpg")
	client := fetch.NewClient(5 * time.Second)
	if err := client.Fetch(context.Background(), server.URL, dest); err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("read dest: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("downloaded %d bytes, want %d", len(got), len(payload))
	}
}

func TestFetchNon2xxFails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "image.jpg")
	client := fetch.NewClient(5 * time.Second)
	if err := client.Fetch(context.Background(), server.URL, dest); err == nil {
		t.Fatal("expected error for 404 response")
	}
	if _, err := os.Stat(dest); !os.IsNotExist(err) {
		t.Errorf("partial file left behind: %v", err)
	}
}

func TestFetchTransportFailure(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "image.jpg")
	client := fetch.NewClient(time.Second)
	err := client.Fetch(context.Background(), "http://127.0.0.1:1/unreachable", dest)
	if err == nil {
		t.Fatal("expected transport error")
	}
}

func TestFetchHonorsContextCancel(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	dest := filepath.Join(t.TempDir(), "image.jpg")
	client := fetch.NewClient(30 * time.Second)
	if err := client.Fetch(ctx, server.URL, dest); err == nil {
		t.Fatal("expected error for canceled context")
	}
}
