package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-verify-mail/internal/pkg/validate"
)

// Mail transports selectable via MAIL_TRANSPORT.
const (
	TransportSMTP = "smtp"
	TransportAMQP = "amqp"
)

// Config holds all runtime configuration loaded from environment variables.
// It is resolved once at process start and injected; nothing re-reads the environment afterwards.
type Config struct {
	AppPort string
	AppEnv  string

	// DevBuild selects the local host for verification links instead of HostName.
	DevBuild       bool
	HostName       string
	HTTPSPortLocal string

	// Sender credentials. Either one empty means mail is not configured.
	EmailUsername    string
	EmailAppPassword string
	EmailSenderName  string
	SMTPHost         string
	SMTPPort         int
	MailTransport    string        `validate:"oneof=smtp amqp"`
	MailSendTimeout  time.Duration `validate:"gt=0"`
	RabbitMQURL      string        `validate:"required_if=MailTransport amqp"`
	RabbitMQQueue    string        `validate:"required_if=MailTransport amqp"`

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTables   DynamoTables

	SNSRegion          string
	AuditAlertTopicARN string // empty disables suspicious-activity alerts
	AuditLogDir        string `validate:"required"`

	JWTPrivateKeyPath string
	JWTPublicKeyPath  string
	JWTExpiry         time.Duration

	AllowedOrigins []string // CORS allowed origins
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Members string `validate:"required"`
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort: getEnv("APP_PORT", "3000"),
		AppEnv:  getEnv("APP_ENV", "development"),

		DevBuild:       getEnvBool("DEV_BUILD", false),
		HostName:       getEnv("HOST_NAME", "localhost"),
		HTTPSPortLocal: getEnv("HTTPSPORT_LOCAL", "3443"),

		EmailUsername:    os.Getenv("EMAIL_USERNAME"),
		EmailAppPassword: os.Getenv("EMAIL_APP_PASSWORD"),
		EmailSenderName:  getEnv("EMAIL_SENDER_NAME", "Infinite Chess"),
		SMTPHost:         getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:         getEnvInt("SMTP_PORT", 587),
		MailTransport:    strings.ToLower(getEnv("MAIL_TRANSPORT", TransportSMTP)),
		MailSendTimeout:  time.Duration(getEnvInt("MAIL_SEND_TIMEOUT_SECONDS", 30)) * time.Second,
		RabbitMQURL:      getEnv("RABBITMQ_URL", ""),
		RabbitMQQueue:    getEnv("RABBITMQ_QUEUE", "verification_emails"),

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			Members: getEnv("DYNAMO_TABLE_MEMBERS", "members"),
		},

		SNSRegion:          getEnv("SNS_REGION", "us-east-1"),
		AuditAlertTopicARN: getEnv("AUDIT_ALERT_TOPIC_ARN", ""),
		AuditLogDir:        getEnv("AUDIT_LOG_DIR", "logs"),

		JWTPrivateKeyPath: getEnv("JWT_PRIVATE_KEY_PATH", "./private_key.pem"),
		JWTPublicKeyPath:  getEnv("JWT_PUBLIC_KEY_PATH", "./public_key.pem"),
		JWTExpiry:         time.Duration(getEnvInt("JWT_EXPIRY_HOURS", 168)) * time.Hour,

		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
	}
}

// Validate checks option combinations that Load cannot express with defaults alone.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// VerificationHost returns the host verification links point at for the current build mode.
func (c *Config) VerificationHost() string {
	if c.DevBuild {
		return "localhost:" + c.HTTPSPortLocal
	}
	return c.HostName
}

// TransportConfigured reports whether both sender credentials are set.
func (c *Config) TransportConfigured() bool {
	return c.EmailUsername != "" && c.EmailAppPassword != ""
}

// SenderAddress formats the From header, e.g. "Infinite Chess <noreply@example.com>".
func (c *Config) SenderAddress() string {
	if c.EmailSenderName == "" {
		return c.EmailUsername
	}
	return fmt.Sprintf("%s <%s>", c.EmailSenderName, c.EmailUsername)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
