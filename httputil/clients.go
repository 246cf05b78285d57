package httputil

import (
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"
)

type Clients struct {
	API *http.Client // messaging endpoint
}

// NewClients builds the outbound HTTP clients. An empty or unparsable proxy
// URL means direct connections.
func NewClients(proxyURL string, timeout time.Duration) *Clients {
	transport := http.DefaultTransport.(*http.Transport).Clone()

	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		} else {
			log.Warn().Err(err).Msg("Ignoring invalid PROXY_URL")
		}
	}

	return &Clients{
		API: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
}
