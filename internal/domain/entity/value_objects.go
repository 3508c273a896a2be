package entity

import (
	"fmt"
	"net/url"
	"strings"
)

// EndpointURL represents a typed URL for an RPC or REST endpoint.
type EndpointURL string

// NewEndpointURL validates rawURL and returns it as an EndpointURL.
func NewEndpointURL(rawURL string) (EndpointURL, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return "", fmt.Errorf("endpoint url cannot be empty")
	}

	u, err := url.ParseRequestURI(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid endpoint url format '%s': %w", rawURL, err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("endpoint url '%s' has no host", rawURL)
	}

	scheme := strings.ToLower(u.Scheme)
	switch scheme {
	case "http", "https", "ws", "wss":
	default:
		return "", fmt.Errorf("endpoint url '%s' has unsupported scheme: '%s'", rawURL, scheme)
	}

	return EndpointURL(strings.TrimRight(rawURL, "/")), nil
}

// String returns the string representation of the EndpointURL.
func (e EndpointURL) String() string {
	return string(e)
}

// Protocol reports the scheme of the URL.
func (e EndpointURL) Protocol() Protocol {
	scheme, _, _ := strings.Cut(string(e), "://")
	switch strings.ToLower(scheme) {
	case "http":
		return ProtocolHTTP
	case "https":
		return ProtocolHTTPS
	case "ws":
		return ProtocolWS
	case "wss":
		return ProtocolWSS
	default:
		return ProtocolUnknown
	}
}

// HTTP returns the URL with a ws/wss scheme rewritten to http/https.
func (e EndpointURL) HTTP() string {
	s := string(e)
	switch e.Protocol() {
	case ProtocolWS:
		return "http://" + s[len("ws://"):]
	case ProtocolWSS:
		return "https://" + s[len("wss://"):]
	}
	return s
}

// WebSocket returns the URL with an http/https scheme rewritten to ws/wss and path appended.
func (e EndpointURL) WebSocket(path string) string {
	s := string(e)
	switch e.Protocol() {
	case ProtocolHTTP:
		s = "ws://" + s[len("http://"):]
	case ProtocolHTTPS:
		s = "wss://" + s[len("https://"):]
	}
	if path != "" && !strings.HasSuffix(s, path) {
		s = strings.TrimRight(s, "/") + "/" + strings.TrimLeft(path, "/")
	}
	return s
}
