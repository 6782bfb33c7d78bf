package main

// Config is read from the environment; flags override it.
type Config struct {
	APIURL string `env:"PORTFOLIO_API_URL,default=http://localhost:5000"`
}
