package mpesa

import "time"

const (
	SandboxBaseURL    = "https://sandbox.safaricom.co.ke"
	ProductionBaseURL = "https://api.safaricom.co.ke"
)

type Config struct {
	Environment    string        `mapstructure:"environment"`
	ConsumerKey    string        `mapstructure:"consumer_key"`
	ConsumerSecret string        `mapstructure:"consumer_secret"`
	Passkey        string        `mapstructure:"passkey"`
	ShortCode      string        `mapstructure:"shortcode"`
	CallbackURL    string        `mapstructure:"callback_url"`
	Timeout        time.Duration `mapstructure:"timeout"`
}

func (c Config) BaseURL() string {
	if c.Environment == "production" {
		return ProductionBaseURL
	}

	return SandboxBaseURL
}

// Complete reports whether the service-level credentials the gateway requires
// are all present. The initiator fails closed when they are not.
func (c Config) Complete() bool {
	return c.ConsumerKey != "" && c.ConsumerSecret != "" && c.Passkey != "" && c.ShortCode != ""
}
