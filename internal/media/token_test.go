package media

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestTokenClientFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/classes/c1/token" {
			t.Errorf("path = %q", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"token":"jwt-here","channelName":"class-c1","uid":"u1"}`))
	}))
	defer srv.Close()

	cred, err := NewTokenClient(srv.URL).Fetch(context.Background(), "c1")
	if err != nil {
		t.Fatal(err)
	}
	if cred.Token != "jwt-here" || cred.ChannelName != "class-c1" || cred.UID != "u1" {
		t.Errorf("cred = %+v", cred)
	}
}

func TestTokenClientFetchNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"the requested resource could not be found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	if _, err := NewTokenClient(srv.URL).Fetch(context.Background(), "missing"); err == nil {
		t.Error("expected an error for a non-200 response")
	}
}
