package config

// Config holds all application configuration, organized into logical
// groups.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth" validate:"required"`
	LLM      LLMConfig      `mapstructure:"llm" validate:"required"`
	Job      JobConfig      `mapstructure:"job" validate:"required"`
}

// ServerConfig contains the HTTP server settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains the database settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

// AuthConfig contains authentication settings.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret" validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`
}

// LLMConfig contains the story generator settings.
type LLMConfig struct {
	GeminiAPIKey       string  `mapstructure:"gemini_api_key" validate:"required"`
	ModelName          string  `mapstructure:"model_name" validate:"required"`
	MaxRetries         int     `mapstructure:"max_retries" validate:"gte=0"`
	RetryDelaySeconds  int     `mapstructure:"retry_delay_seconds" validate:"gte=0"`
	TimeoutSeconds     int     `mapstructure:"timeout_seconds" validate:"required,gt=0"`
	Temperature        float32 `mapstructure:"temperature" validate:"gte=0,lte=2"`
	PromptTemplatePath string  `mapstructure:"prompt_template_path"`
}

// JobConfig contains the background job runner and rescheduler
// settings.
type JobConfig struct {
	WorkerCount               int `mapstructure:"worker_count" validate:"required,gt=0"`
	QueueSize                 int `mapstructure:"queue_size" validate:"required,gt=0"`
	StuckJobAgeMinutes        int `mapstructure:"stuck_job_age_minutes" validate:"required,gt=0"`
	RescheduleIntervalMinutes int `mapstructure:"reschedule_interval_minutes" validate:"required,gt=0"`
}
