package demosite

type Config struct {
	Port int
}

func DefaultConfig() Config {
	return Config{Port: 9999}
}
