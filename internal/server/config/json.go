package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/gophauth/internal/flagx"
	"github.com/dmitrijs2005/gophauth/internal/timex"
)

// JsonConfig mirrors Config for JSON files. Durations use timex.Duration so
// both "30m" and integer nanoseconds are accepted.
type JsonConfig struct {
	EndpointAddrGRPC            string         `json:"endpoint_addr_grpc"`
	EndpointAddrHTTP            string         `json:"endpoint_addr_http"`
	LogBackend                  string         `json:"log_backend"`
	LogLevel                    string         `json:"log_level"`
	StorageBackend              string         `json:"storage_backend"`
	TablePrefix                 string         `json:"table_prefix"`
	DatabaseDSN                 string         `json:"database_dsn"`
	AWSRegion                   string         `json:"aws_region"`
	AWSEndpoint                 string         `json:"aws_endpoint"`
	AWSAccessKeyID              string         `json:"aws_access_key_id"`
	AWSSecretAccessKey          string         `json:"aws_secret_access_key"`
	TokenIssuer                 string         `json:"token_issuer"`
	SecretKey                   string         `json:"secret_key"`
	AccessTokenValidityDuration timex.Duration `json:"access_token_validity_duration"`
	CognitoPoolID               string         `json:"cognito_pool_id"`
	DeveloperProviderName       string         `json:"developer_provider_name"`
	Notifier                    string         `json:"notifier"`
	EmailSource                 string         `json:"email_source"`
	AppName                     string         `json:"app_name"`
	VerificationLink            string         `json:"verification_link"`
	ResetPasswordLink           string         `json:"reset_password_link"`
	TemplateBucket              string         `json:"template_bucket"`
	TemplatePrefix              string         `json:"template_prefix"`
	RabbitMQURL                 string         `json:"rabbitmq_url"`
	RabbitMQExchange            string         `json:"rabbitmq_exchange"`
	ResetTokenValidityDuration  timex.Duration `json:"reset_token_validity_duration"`
	RequestTimeout              timex.Duration `json:"request_timeout"`
}

// parseJson loads the file passed with -c or -config and copies every field
// present in it into config. Absent fields keep their current values.
// Panics if the file cannot be read or holds invalid JSON.
func parseJson(config *Config) {

	// try flags
	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.LogBackend, c.LogBackend)
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.StorageBackend, c.StorageBackend)
	setString(&config.TablePrefix, c.TablePrefix)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.AWSRegion, c.AWSRegion)
	setString(&config.AWSEndpoint, c.AWSEndpoint)
	setString(&config.AWSAccessKeyID, c.AWSAccessKeyID)
	setString(&config.AWSSecretAccessKey, c.AWSSecretAccessKey)
	setString(&config.TokenIssuer, c.TokenIssuer)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.CognitoPoolID, c.CognitoPoolID)
	setString(&config.DeveloperProviderName, c.DeveloperProviderName)
	setString(&config.Notifier, c.Notifier)
	setString(&config.EmailSource, c.EmailSource)
	setString(&config.AppName, c.AppName)
	setString(&config.VerificationLink, c.VerificationLink)
	setString(&config.ResetPasswordLink, c.ResetPasswordLink)
	setString(&config.TemplateBucket, c.TemplateBucket)
	setString(&config.TemplatePrefix, c.TemplatePrefix)
	setString(&config.RabbitMQURL, c.RabbitMQURL)
	setString(&config.RabbitMQExchange, c.RabbitMQExchange)

	if !c.AccessTokenValidityDuration.IsZero() {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if !c.ResetTokenValidityDuration.IsZero() {
		config.ResetTokenValidityDuration = c.ResetTokenValidityDuration.Duration
	}
	if !c.RequestTimeout.IsZero() {
		config.RequestTimeout = c.RequestTimeout.Duration
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
