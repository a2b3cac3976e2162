package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel  string    `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort  string    `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	Redis     Redis     `yaml:"redis"`
	DeepSeek  DeepSeek  `yaml:"deepseek"`
	GoogleTTS GoogleTTS `yaml:"google-tts"`
	Game      Game      `yaml:"game"`
}

type Redis struct {
	Host string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
}

type DeepSeek struct {
	APIKey  string `yaml:"api-key" env:"DEEPSEEK_API_KEY" env-default:""`
	BaseURL string `yaml:"base-url" env:"DEEPSEEK_BASE_URL" env-default:"https://api.deepseek.com"`
	Model   string `yaml:"model" env:"DEEPSEEK_MODEL" env-default:"deepseek-chat"`
}

type GoogleTTS struct {
	APIKey string `yaml:"api-key" env:"GOOGLE_TTS_API_KEY" env-default:""`
}

// Game holds the pacing delays of the TV-show answer flow. Tests override
// them with near-zero values.
type Game struct {
	RevealDelay   time.Duration `yaml:"reveal-delay" env:"GAME_REVEAL_DELAY" env-default:"3s"`
	AdvanceDelay  time.Duration `yaml:"advance-delay" env:"GAME_ADVANCE_DELAY" env-default:"3s"`
	LoseDelay     time.Duration `yaml:"lose-delay" env:"GAME_LOSE_DELAY" env-default:"5s"`
	LifelineDelay time.Duration `yaml:"lifeline-delay" env:"GAME_LIFELINE_DELAY" env-default:"8s"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		panic(fmt.Errorf("unable to load config file: %w", err))
	}

	return config
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
