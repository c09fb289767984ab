package utils

//go:generate $MOCKGEN -source=user_agent_provider.go -destination=mocks/user_agent_provider_mock.go

import "github.com/oshokin/yadisk-grabber/internal/version"

// UserAgentProvider supplies the User-Agent header for outbound requests.
type UserAgentProvider interface {
	// GetUserAgent returns a User-Agent string.
	GetUserAgent() string
}

// StaticUserAgentProvider always returns the User-Agent it was created with.
type StaticUserAgentProvider struct {
	// userAgent is the User-Agent string to return.
	userAgent string
}

// NewStaticUserAgentProvider creates a StaticUserAgentProvider.
// An empty userAgent is replaced with DefaultUserAgent.
func NewStaticUserAgentProvider(userAgent string) UserAgentProvider {
	if userAgent == "" {
		userAgent = DefaultUserAgent()
	}

	return &StaticUserAgentProvider{userAgent: userAgent}
}

// DefaultUserAgent identifies the application and its version.
func DefaultUserAgent() string {
	return "yadisk-grabber/" + version.Short()
}

// GetUserAgent returns a User-Agent string.
func (p *StaticUserAgentProvider) GetUserAgent() string {
	return p.userAgent
}
