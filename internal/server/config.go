package server

type Config struct {
	// ListenAddr is the HTTP listen address for the API server.
	ListenAddr string
}

func DefaultConfig() Config {
	return Config{ListenAddr: ":3000"}
}
