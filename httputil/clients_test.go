package httputil

import (
	"net/http"
	"testing"
	"time"
)

func TestNewClients_Proxy(t *testing.T) {
	c := NewClients("http://127.0.0.1:8080", 5*time.Second)
	if c.API.Timeout != 5*time.Second {
		t.Fatalf("unexpected timeout %s", c.API.Timeout)
	}
	tr := c.API.Transport.(*http.Transport)
	req, _ := http.NewRequest("GET", "https://api.chatwork.com/v2/me", nil)
	proxy, err := tr.Proxy(req)
	if err != nil || proxy == nil || proxy.Host != "127.0.0.1:8080" {
		t.Fatalf("expected proxy 127.0.0.1:8080, got %v (%v)", proxy, err)
	}
}

func TestNewClients_Direct(t *testing.T) {
	c := NewClients("", time.Second)
	if c.API.Transport.(*http.Transport).Proxy == nil {
		// cloned default transport keeps ProxyFromEnvironment
		t.Fatalf("expected environment proxy function")
	}
}
