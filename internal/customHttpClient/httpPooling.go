package customHttpClient

import (
	"net/http"
	"sync"

	"github.com/akolanti/PDFChat/internal/config"
)

var (
	once   sync.Once
	client *http.Client
)

// GetClient returns the process wide client shared by the embedding and llm
// providers so they reuse connections.
func GetClient() *http.Client {
	once.Do(func() {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.MaxIdleConns = config.MaxIdleConns
		transport.MaxIdleConnsPerHost = config.MaxIdleConnsPerHost
		transport.IdleConnTimeout = config.IdleConnTimeout

		client = &http.Client{
			Transport: transport,
			Timeout:   config.OutboundTimeout,
		}
	})
	return client
}
