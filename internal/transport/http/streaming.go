package http

import (
	"net"
	"net/http"
	"time"
)

// keepAliveInterval is the TCP keep-alive period of streaming connections.
const keepAliveInterval = 30 * time.Second

// NewStreamingTransport returns a transport for long downloads.
// Dialing, the TLS handshake and the wait for response headers are each bounded by timeout,
// while reading the body is not, so it must be used by a client without an overall timeout.
func NewStreamingTransport(timeout time.Duration) *http.Transport {
	var transport *http.Transport

	if defaultTransport, ok := http.DefaultTransport.(*http.Transport); ok {
		transport = defaultTransport.Clone()
	} else {
		transport = &http.Transport{
			Proxy:             http.ProxyFromEnvironment,
			ForceAttemptHTTP2: true,
		}
	}

	dialer := &net.Dialer{
		Timeout:   timeout,
		KeepAlive: keepAliveInterval,
	}

	transport.DialContext = dialer.DialContext
	transport.TLSHandshakeTimeout = timeout
	transport.ResponseHeaderTimeout = timeout

	return transport
}
