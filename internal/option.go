package internal

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config   *Config
	mcpStdio bool
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithMCPStdio runs the process as an MCP stdio server instead of the HTTP
// server. stdout then belongs to the MCP transport.
func WithMCPStdio() Option {
	return func(a *application) {
		a.mcpStdio = true
	}
}
