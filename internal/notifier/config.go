package notifier

type Config struct {
	Host     string
	Port     int
	Username string
	Password string

	FromEmail string
	FromName  string
}

func DefaultConfig() *Config {
	return &Config{
		Host:      "smtp.gmail.com",
		Port:      587,
		FromEmail: "alerts@siteguard.com",
		FromName:  "SiteGuard Alerts",
	}
}
