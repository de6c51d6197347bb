package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App       AppConfig       `yaml:"app"`
	Redis     RedisConfig     `yaml:"redis"`
	Engine    EngineConfig    `yaml:"engine"`
	Game      GameConfig      `yaml:"game"`
	Speech    SpeechConfig    `yaml:"speech"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

type AppConfig struct {
	Name string `yaml:"name" validate:"required"`
	Port string `yaml:"port" validate:"required,numeric"`
	Env  string `yaml:"env" validate:"oneof=development production test"`
}

type RedisConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Address  string        `yaml:"address" validate:"required_if=Enabled true"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db" validate:"min=0,max=15"`
	TTL      time.Duration `yaml:"ttl" validate:"min=0"`
}

type EngineConfig struct {
	Kind       string        `yaml:"kind" validate:"oneof=none uci remote"`
	Path       string        `yaml:"path" validate:"required_if=Kind uci"`
	URL        string        `yaml:"url" validate:"required_if=Kind remote"`
	Depth      int           `yaml:"depth" validate:"min=0,max=40"`
	MoveTime   time.Duration `yaml:"move_time" validate:"min=0"`
	Timeout    time.Duration `yaml:"timeout" validate:"min=0"`
	SkillLevel int           `yaml:"skill_level" validate:"min=0,max=20"`
	Threads    int           `yaml:"threads" validate:"min=0,max=64"`
}

type GameConfig struct {
	TimeControl     string        `yaml:"time_control" validate:"timecontrol"`
	PlayerSide      string        `yaml:"player_side" validate:"oneof=white black"`
	ThinkDelay      time.Duration `yaml:"think_delay" validate:"min=0"`
	CommandCooldown time.Duration `yaml:"command_cooldown" validate:"min=0"`
	TickInterval    time.Duration `yaml:"tick_interval" validate:"min=0"`
}

type SpeechConfig struct {
	MaxRestarts  int           `yaml:"max_restarts" validate:"min=0,max=100"`
	RestartDelay time.Duration `yaml:"restart_delay" validate:"min=0"`
	Rate         float64       `yaml:"rate" validate:"min=0,max=10"`
	Volume       float64       `yaml:"volume" validate:"min=0,max=1"`
}

type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" validate:"min=0"`
	Burst             int     `yaml:"burst" validate:"min=0"`
}

func Default() Config {
	return Config{
		App: AppConfig{
			Name: "VoiceChess",
			Port: "3000",
			Env:  "development",
		},
		Redis: RedisConfig{
			Address: "localhost:6379",
			TTL:     2 * time.Hour,
		},
		Engine: EngineConfig{
			Kind:    "none",
			Path:    "stockfish",
			Depth:   8,
			Timeout: 5 * time.Second,
		},
		Game: GameConfig{
			TimeControl:     "5+0",
			PlayerSide:      "white",
			ThinkDelay:      600 * time.Millisecond,
			CommandCooldown: 500 * time.Millisecond,
			TickInterval:    time.Second,
		},
		Speech: SpeechConfig{
			MaxRestarts:  5,
			RestartDelay: 100 * time.Millisecond,
			Rate:         1,
			Volume:       1,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 50,
			Burst:             100,
		},
	}
}

// Load builds the configuration from defaults, then the YAML file at path (if
// any), then .env and the process environment, and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}

	if err := NewValidator().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) error {
	var errs []error
	str := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}
	float := func(key string, dst *float64) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = f
		}
	}
	duration := func(key string, dst *time.Duration) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = d
		}
	}
	boolean := func(key string, dst *bool) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = b
		}
	}

	str("APP_NAME", &cfg.App.Name)
	str("APP_PORT", &cfg.App.Port)
	str("APP_ENV", &cfg.App.Env)

	boolean("REDIS_ENABLED", &cfg.Redis.Enabled)
	str("REDIS_ADDRESS", &cfg.Redis.Address)
	str("REDIS_PASSWORD", &cfg.Redis.Password)
	num("REDIS_DB", &cfg.Redis.DB)
	duration("REDIS_TTL", &cfg.Redis.TTL)

	str("ENGINE_KIND", &cfg.Engine.Kind)
	str("ENGINE_PATH", &cfg.Engine.Path)
	str("ENGINE_URL", &cfg.Engine.URL)
	num("ENGINE_DEPTH", &cfg.Engine.Depth)
	duration("ENGINE_MOVE_TIME", &cfg.Engine.MoveTime)
	duration("ENGINE_TIMEOUT", &cfg.Engine.Timeout)
	num("ENGINE_SKILL_LEVEL", &cfg.Engine.SkillLevel)
	num("ENGINE_THREADS", &cfg.Engine.Threads)

	str("GAME_TIME_CONTROL", &cfg.Game.TimeControl)
	str("GAME_PLAYER_SIDE", &cfg.Game.PlayerSide)
	duration("GAME_THINK_DELAY", &cfg.Game.ThinkDelay)
	duration("GAME_COMMAND_COOLDOWN", &cfg.Game.CommandCooldown)
	duration("GAME_TICK_INTERVAL", &cfg.Game.TickInterval)

	num("SPEECH_MAX_RESTARTS", &cfg.Speech.MaxRestarts)
	duration("SPEECH_RESTART_DELAY", &cfg.Speech.RestartDelay)
	float("SPEECH_RATE", &cfg.Speech.Rate)
	float("SPEECH_VOLUME", &cfg.Speech.Volume)

	float("RATE_LIMIT_RPS", &cfg.RateLimit.RequestsPerSecond)
	num("RATE_LIMIT_BURST", &cfg.RateLimit.Burst)

	return errors.Join(errs...)
}
