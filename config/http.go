package config

// HTTPConfig contains HTTP server configuration.
type HTTPConfig struct {
	// Addr is the address to bind the HTTP server to.
	Addr string `env:"HTTP_ADDR" envDefault:":8080"`

	// BaseURL is the base URL of the application (e.g., "https://modhub.io").
	BaseURL string `env:"APP_BASE_URL" envDefault:"http://localhost:8080"`

	// ParentDomain is the shared parent domain. Module URLs resolve to
	// subdomains of it, and session cookies are scoped to it so every
	// module subdomain can present them.
	ParentDomain string `env:"APP_PARENT_DOMAIN" envDefault:"modhub.io"`
}
