package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func testSlack(t *testing.T, handler http.HandlerFunc) *Slack {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	s := NewSlack("xoxb-test")
	s.baseURL = srv.URL
	return s
}

func TestPostMessage(t *testing.T) {
	var got map[string]string
	var auth string
	s := testSlack(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat.postMessage" {
			t.Errorf("path = %q", r.URL.Path)
		}
		auth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Error(err)
		}
		w.Write([]byte(`{"ok": true}`))
	})

	err := s.PostMessage(context.Background(), "C1", "1700.01", "hello there")
	if err != nil {
		t.Fatal(err)
	}
	if auth != "Bearer xoxb-test" {
		t.Errorf("auth = %q", auth)
	}
	if got["channel"] != "C1" || got["thread_ts"] != "1700.01" {
		t.Errorf("payload = %v", got)
	}
}

func TestPostMessageAPIError(t *testing.T) {
	s := testSlack(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"ok": false, "error": "channel_not_found"}`))
	})

	err := s.PostMessage(context.Background(), "C1", "", "hi")
	if err == nil || !strings.Contains(err.Error(), "channel_not_found") {
		t.Errorf("err = %v", err)
	}
}

func TestThreadReplies(t *testing.T) {
	s := testSlack(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/conversations.replies" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if r.URL.Query().Get("ts") != "1700.01" {
			t.Errorf("ts = %q", r.URL.Query().Get("ts"))
		}
		w.Write([]byte(`{"ok": true, "messages": [
			{"user": "U1", "text": "first", "ts": "1700.01"},
			{"bot_id": "B1", "text": "second", "ts": "1700.02"}
		]}`))
	})

	msgs, err := s.ThreadReplies(context.Background(), "C1", "1700.01")
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 2 || msgs[0].Text != "first" || msgs[1].BotID != "B1" {
		t.Errorf("msgs = %+v", msgs)
	}
}

func TestDownloadFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer xoxb-test" {
			t.Errorf("auth = %q", r.Header.Get("Authorization"))
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte("png bytes"))
	}))
	t.Cleanup(srv.Close)
	s := testSlack(t, nil)

	data, err := s.DownloadFile(context.Background(), srv.URL+"/file.png")
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "png bytes" {
		t.Errorf("data = %q", data)
	}
}

func TestDownloadFileRejectsLoginPage(t *testing.T) {
	// An expired token gets a 200 HTML login page, not the file.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte("<html>sign in</html>"))
	}))
	t.Cleanup(srv.Close)
	s := testSlack(t, nil)

	_, err := s.DownloadFile(context.Background(), srv.URL+"/file.png")
	if err == nil || !strings.Contains(err.Error(), "HTML") {
		t.Errorf("err = %v", err)
	}
}

func TestDownloadFileDoesNotFollowRedirects(t *testing.T) {
	// A redirect on a private file URL means the token was not honoured.
	// The redirect must surface as a failure rather than be followed to
	// the login page.
	followed := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/login" {
			followed = true
			w.Header().Set("Content-Type", "text/html")
			w.Write([]byte("<html>sign in</html>"))
			return
		}
		http.Redirect(w, r, "/login", http.StatusFound)
	}))
	t.Cleanup(srv.Close)
	s := testSlack(t, nil)

	_, err := s.DownloadFile(context.Background(), srv.URL+"/file.png")
	if err == nil || !strings.Contains(err.Error(), "status 302") {
		t.Errorf("err = %v", err)
	}
	if followed {
		t.Error("redirect was followed to the login page")
	}
}

func TestDownloadFileRejectsErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	t.Cleanup(srv.Close)
	s := testSlack(t, nil)

	_, err := s.DownloadFile(context.Background(), srv.URL+"/file.png")
	if err == nil || !strings.Contains(err.Error(), "status 403") {
		t.Errorf("err = %v", err)
	}
}
