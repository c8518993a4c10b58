package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Config is the complete gateway configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Provider   ProviderConfig   `yaml:"provider"`
	Downstream DownstreamConfig `yaml:"downstream"`
}

// ServerConfig configures the HTTP endpoint the gateway listens on.
type ServerConfig struct {
	// Host is the listen address.
	Host string `yaml:"host"`

	// Port is the listen port.
	Port int `yaml:"port"`

	// PublicURL is the externally reachable base URL, used to build the
	// OAuth redirect URI handed to the provider.
	PublicURL string `yaml:"publicURL"`

	// MCPPath is the path the MCP endpoint is mounted on.
	MCPPath string `yaml:"mcpPath"`

	// CallbackPath is the path the OAuth callback handler is mounted on.
	CallbackPath string `yaml:"callbackPath"`
}

// ProviderConfig describes the identity provider both OAuth flows run
// against.
type ProviderConfig struct {
	AuthorizationEndpoint string `yaml:"authorizationEndpoint"`
	TokenEndpoint         string `yaml:"tokenEndpoint"`
	ClientID              string `yaml:"clientID"`
	ClientSecret          string `yaml:"clientSecret"`

	// Scopes are requested in the interactive authorization-code flow.
	Scopes []string `yaml:"scopes"`
}

// DownstreamConfig describes the Submission API the gateway proxies.
type DownstreamConfig struct {
	// BaseURL is the API root all request paths are resolved against.
	BaseURL string `yaml:"baseURL"`

	// Scope is requested on the delegated client-credentials token.
	Scope string `yaml:"scope"`

	// TimeoutSeconds bounds each downstream HTTP request.
	TimeoutSeconds int `yaml:"timeoutSeconds"`
}

// RedirectURL is the OAuth redirect URI registered with the provider,
// derived from the public URL and callback path.
func (c *Config) RedirectURL() string {
	return strings.TrimSuffix(c.Server.PublicURL, "/") + c.Server.CallbackPath
}

// ListenAddress is the host:port the HTTP server binds.
func (c *Config) ListenAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// DownstreamTimeout returns the configured downstream request timeout.
func (c *Config) DownstreamTimeout() time.Duration {
	return time.Duration(c.Downstream.TimeoutSeconds) * time.Second
}

// Validate checks the configuration for values the gateway cannot start
// without. It returns the first problem found.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if err := requireURL("server.publicURL", c.Server.PublicURL); err != nil {
		return err
	}
	if !strings.HasPrefix(c.Server.MCPPath, "/") {
		return fmt.Errorf("server.mcpPath must start with /, got %q", c.Server.MCPPath)
	}
	if !strings.HasPrefix(c.Server.CallbackPath, "/") {
		return fmt.Errorf("server.callbackPath must start with /, got %q", c.Server.CallbackPath)
	}
	if c.Server.MCPPath == c.Server.CallbackPath {
		return fmt.Errorf("server.mcpPath and server.callbackPath must differ, both are %q", c.Server.MCPPath)
	}

	if err := requireURL("provider.authorizationEndpoint", c.Provider.AuthorizationEndpoint); err != nil {
		return err
	}
	if err := requireURL("provider.tokenEndpoint", c.Provider.TokenEndpoint); err != nil {
		return err
	}
	if c.Provider.ClientID == "" {
		return fmt.Errorf("provider.clientID is required")
	}

	if err := requireURL("downstream.baseURL", c.Downstream.BaseURL); err != nil {
		return err
	}
	if c.Downstream.Scope == "" {
		return fmt.Errorf("downstream.scope is required")
	}
	if c.Downstream.TimeoutSeconds < 1 {
		return fmt.Errorf("downstream.timeoutSeconds must be positive, got %d", c.Downstream.TimeoutSeconds)
	}
	return nil
}

func requireURL(field, value string) error {
	if value == "" {
		return fmt.Errorf("%s is required", field)
	}
	parsed, err := url.Parse(value)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("%s must be an absolute URL, got %q", field, value)
	}
	return nil
}
