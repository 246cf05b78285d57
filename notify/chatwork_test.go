package notify

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"rankwatch/models"
)

var target = models.WatchTarget{
	URL:         "https://www.2ndstreet.jp/search?category=121001&sortBy=arrival",
	DisplayName: "Shop",
	Category:    "Camera",
	ChannelID:   "385402385",
}

func makeListings(n int) []models.Listing {
	listings := make([]models.Listing, n)
	for i := range listings {
		listings[i] = models.Listing{
			Name:  fmt.Sprintf("Item %02d", i+1),
			Price: fmt.Sprintf("%d", 1000+i),
			URL:   fmt.Sprintf("https://example.com/%d", i+1),
		}
	}
	return listings
}

func TestFormatMessage_Truncates(t *testing.T) {
	msg := FormatMessage(target, makeListings(25))

	if got := strings.Count(msg, "■"); got != 20 {
		t.Fatalf("expected 20 entries, got %d", got)
	}
	if !strings.Contains(msg, "...他5件") {
		t.Fatalf("expected footer for 5 remaining, got:\n%s", msg)
	}
	if strings.Contains(msg, "Item 21") {
		t.Fatalf("entry 21 must not be rendered")
	}
}

func TestFormatMessage_Single(t *testing.T) {
	msg := FormatMessage(target, []models.Listing{{Name: "Camera B", Price: "8000"}})

	if !strings.HasPrefix(msg, "[info]") || !strings.HasSuffix(msg, "[/info]") {
		t.Fatalf("expected [info] frame, got:\n%s", msg)
	}
	if !strings.Contains(msg, "📍 Shop + Camera") || !strings.Contains(msg, target.URL) {
		t.Fatalf("expected header with target, got:\n%s", msg)
	}
	if !strings.Contains(msg, "■Camera B・8000円") {
		t.Fatalf("expected listing line, got:\n%s", msg)
	}
	if strings.Contains(msg, "...他") {
		t.Fatalf("unexpected footer")
	}
}

func TestNotify_PostsForm(t *testing.T) {
	var gotPath, gotToken, gotBody, gotType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotToken = r.Header.Get("X-ChatWorkToken")
		gotType = r.Header.Get("Content-Type")
		r.ParseForm()
		gotBody = r.PostForm.Get("body")
		w.Write([]byte(`{"message_id":"1"}`))
	}))
	defer srv.Close()

	cw := NewChatWork("secret", srv.URL+"/", srv.Client(), 2*time.Second)
	if ok := cw.Notify(context.Background(), target, makeListings(1)); !ok {
		t.Fatalf("expected success")
	}

	if gotPath != "/rooms/385402385/messages" {
		t.Fatalf("unexpected path %s", gotPath)
	}
	if gotToken != "secret" {
		t.Fatalf("unexpected token %q", gotToken)
	}
	if gotType != "application/x-www-form-urlencoded" {
		t.Fatalf("unexpected content type %q", gotType)
	}
	if !strings.Contains(gotBody, "■Item 01・1000円") {
		t.Fatalf("unexpected body %q", gotBody)
	}
}

func TestNotify_ErrorStatusReturnsFalse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"errors":["Invalid API token"]}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	cw := NewChatWork("bad", srv.URL, srv.Client(), 2*time.Second)
	if ok := cw.Notify(context.Background(), target, makeListings(1)); ok {
		t.Fatalf("expected failure on 401")
	}
}

func TestNotify_TimeoutReturnsFalse(t *testing.T) {
	done := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()
	defer close(done)

	cw := NewChatWork("secret", srv.URL, srv.Client(), 100*time.Millisecond)
	start := time.Now()
	if ok := cw.Notify(context.Background(), target, makeListings(1)); ok {
		t.Fatalf("expected failure on timeout")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("notify blocked for %s", elapsed)
	}
}
