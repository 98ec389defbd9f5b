package config

import (
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/ide-mentor/mentor-api/internal/logger"
	"github.com/ide-mentor/mentor-api/internal/validator"
)

type OpenRouterConfig struct {
	BaseURL         string        `mapstructure:"base_url"         validate:"required,url"`
	APIKey          string        `mapstructure:"api_key"          validate:"required"`
	Model           string        `mapstructure:"model"            validate:"required"`
	MultimodalModel string        `mapstructure:"multimodal_model" validate:"required"`
	Referer         string        `mapstructure:"referer"`
	Title           string        `mapstructure:"title"`
	Timeout         time.Duration `mapstructure:"timeout"          validate:"required"`
	MaxRetries      int           `mapstructure:"max_retries"`
}

type ContainerConfig struct {
	ID       string        `mapstructure:"id"        validate:"required"`
	DestPath string        `mapstructure:"dest_path" validate:"required"`
	CLI      string        `mapstructure:"cli"       validate:"required"`
	Timeout  time.Duration `mapstructure:"timeout"   validate:"required"`
}

type CatalogConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

type SlogConfig struct {
	Level  int  `mapstructure:"level"`
	Pretty bool `mapstructure:"pretty"`
}

type LoggingConfig struct {
	App     SlogConfig `mapstructure:"app"`
	UseOTLP bool       `mapstructure:"use_otlp"`
}

type CORSConfig struct {
	Origins []string `mapstructure:"origins" validate:"required"`
}

// See mentorapi.yaml for an example config
type Config struct {
	OpenRouter           *OpenRouterConfig `mapstructure:"openrouter" validate:"required"`
	Container            *ContainerConfig  `mapstructure:"container"  validate:"required"`
	Catalog              *CatalogConfig    `mapstructure:"catalog"    validate:"required"`
	Logging              *LoggingConfig    `mapstructure:"logging"`
	CORS                 *CORSConfig       `mapstructure:"cors"       validate:"required"`
	ScratchDir           string            `mapstructure:"scratch_dir"    validate:"required"`
	TempDir              string            `mapstructure:"temp_dir"       validate:"required"`
	ListenAddress        string            `mapstructure:"listen_address" validate:"required"`
	GracefulShutdownSecs int64             `mapstructure:"graceful_shutdown_secs"`
}

const (
	AppLogLevel          string = "logging.app.level"
	AppLogPretty         string = "logging.app.pretty"
	CatalogPath          string = "catalog.path"
	ContainerCLI         string = "container.cli"
	ContainerDestPath    string = "container.dest_path"
	ContainerID          string = "container.id"
	ContainerTimeout     string = "container.timeout"
	CORSOrigins          string = "cors.origins"
	EnvPrefix            string = "mentorapi"
	GracefulShutdownSecs string = "graceful_shutdown_secs"
	ListenAddress        string = "listen_address"
	OpenRouterAPIKey     string = "openrouter.api_key" // #nosec
	OpenRouterBaseURL    string = "openrouter.base_url"
	OpenRouterMaxRetries string = "openrouter.max_retries"
	OpenRouterModel      string = "openrouter.model"
	OpenRouterMMModel    string = "openrouter.multimodal_model"
	OpenRouterReferer    string = "openrouter.referer"
	OpenRouterTimeout    string = "openrouter.timeout"
	OpenRouterTitle      string = "openrouter.title"
	ScratchDir           string = "scratch_dir"
	TempDir              string = "temp_dir"
	UseOTLP              string = "logging.use_otlp"
)

var configReady = false
var config Config

func GetConfig() (*Config, error) {
	if configReady {
		logger.Logger.Debug("returning already-loaded config")
		return &config, nil
	}
	logger.Logger.Info("loading config")

	v := viper.New()

	v.SetConfigName("mentorapi")

	v.AddConfigPath("/etc/mentorapi/")
	v.AddConfigPath(".")

	v.SetConfigType("yaml")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.AutomaticEnv()

	// workaround for https://github.com/spf13/viper/issues/761
	// bind env vars explicitly so they unmarshal into the nested struct
	err := v.BindEnv(OpenRouterAPIKey)
	if err != nil {
		return nil, err
	}
	err = v.BindEnv(ContainerID)
	if err != nil {
		return nil, err
	}

	v.SetDefault(OpenRouterBaseURL, "https://openrouter.ai/api/v1")
	v.SetDefault(OpenRouterModel, "deepseek/deepseek-r1-distill-llama-70b:free")
	v.SetDefault(OpenRouterMMModel, "deepseek/deepseek-r1-distill-llama-70b:free")
	v.SetDefault(OpenRouterReferer, "https://github.com/ide-mentor/mentor-api")
	v.SetDefault(OpenRouterTitle, "IDE-Mentor-Bot")
	v.SetDefault(OpenRouterTimeout, 2*time.Minute)
	v.SetDefault(OpenRouterMaxRetries, 2)

	v.SetDefault(ContainerCLI, "docker")
	v.SetDefault(ContainerDestPath, "/workspace")
	v.SetDefault(ContainerTimeout, time.Minute)

	v.SetDefault(CatalogPath, "commands.csv")

	v.SetDefault(AppLogLevel, int(slog.LevelDebug))
	v.SetDefault(AppLogPretty, false)
	v.SetDefault(UseOTLP, false)

	v.SetDefault(CORSOrigins, []string{"*"})

	v.SetDefault(ScratchDir, "./workspace")
	v.SetDefault(TempDir, "/tmp")
	v.SetDefault(ListenAddress, "[::]:5000")
	v.SetDefault(GracefulShutdownSecs, 30)

	err = v.ReadInConfig()
	if err != nil {
		// ignore config file not found to allow pure env config
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	err = v.Unmarshal(&config)
	if err != nil {
		configReady = false
		return nil, err
	}

	valid := validator.Create()
	err = valid.Validate(&config)
	if err != nil {
		configReady = false
		return nil, err
	}

	configReady = true
	return &config, nil
}
