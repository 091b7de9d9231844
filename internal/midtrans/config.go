package midtrans

const (
	sandboxBaseURL    = "https://api.sandbox.midtrans.com/v2"
	productionBaseURL = "https://api.midtrans.com/v2"
)

// Config carries the merchant credentials. It is built once in main and
// injected; nothing in this package reads the environment.
type Config struct {
	ServerKey    string
	ClientKey    string
	MerchantID   string
	IsProduction bool
}

func (c Config) BaseURL() string {
	if c.IsProduction {
		return productionBaseURL
	}
	return sandboxBaseURL
}
