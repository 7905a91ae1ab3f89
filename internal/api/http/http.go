package http

type Config struct {
	Port              uint   `mapstructure:"port"`
	AdminAPIKey       string `mapstructure:"admin_api_key"`
	AdminPasswordHash string `mapstructure:"admin_password_hash"`
}
