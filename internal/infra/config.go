package infra

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config — корневая структура конфигурации сервиса.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Engine   EngineConfig   `mapstructure:"engine"`
	Notify   NotifyConfig   `mapstructure:"notify"`
	Agents   AgentsConfig   `mapstructure:"agents"`
	Logger   LoggerConfig   `mapstructure:"logger"`
}

// ServerConfig описывает настройки HTTP-сервера.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig описывает подключение к PostgreSQL.
type DatabaseConfig struct {
	URL      string `mapstructure:"url"`
	MaxConns int32  `mapstructure:"max_conns"`
	MinConns int32  `mapstructure:"min_conns"`
}

// RedisConfig описывает подключение к Redis (кэш аналитики и Pub/Sub сигналы).
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AuthConfig — настройки токенов агентов (HS256).
type AuthConfig struct {
	Secret   string        `mapstructure:"secret"`
	TokenTTL time.Duration `mapstructure:"token_ttl"`
}

// EngineConfig — настройки движка обработки заявок.
type EngineConfig struct {
	PassInterval time.Duration `mapstructure:"pass_interval"` // Каденс фоновых проходов
	Workers      int           `mapstructure:"workers"`       // Пул на проход

	// Имитация скоринга. В проде можно задать темп обработки,
	// в тестах и dev — ноль.
	DelayMin time.Duration `mapstructure:"delay_min"`
	DelayMax time.Duration `mapstructure:"delay_max"`
}

// NotifyConfig — настройки диспетчера уведомлений.
type NotifyConfig struct {
	BufferSize int `mapstructure:"buffer_size"`
	Workers    int `mapstructure:"workers"`
}

// AgentsConfig — административные настройки справочника агентов.
type AgentsConfig struct {
	// SeedDemo заливает демо-агентов в пустую таблицу при старте
	SeedDemo bool `mapstructure:"seed_demo"`
}

// LoggerConfig настраивает поведение zap логгера.
type LoggerConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, console
}

// LoadConfig инициализирует конфигурацию, объединяя значения из файла и ENV.
func LoadConfig() (*Config, error) {
	v := viper.New()

	// 1. Настройка поиска файла
	v.SetConfigName("config")    // имя файла без расширения
	v.SetConfigType("yaml")      // формат
	v.AddConfigPath(".")         // ищем в корне
	v.AddConfigPath("./configs") // и в папке с конфигами

	// 2. Настройка переменных окружения (ENV)
	// Позволяет перекрывать конфиг: SERVER_PORT=9000 перекроет server.port
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// 3. Установка дефолтных значений
	setDefaults(v)

	// 4. Чтение файла
	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Если файла нет — работаем на ENV и дефолтах
	}

	// 5. Маппинг в структуру
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 5*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)
	v.SetDefault("server.shutdown_timeout", 30*time.Second)
	v.SetDefault("database.max_conns", 15)
	v.SetDefault("database.min_conns", 5)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("auth.token_ttl", 24*time.Hour)
	v.SetDefault("engine.pass_interval", 30*time.Second)
	v.SetDefault("engine.workers", 5)
	v.SetDefault("engine.delay_min", 0)
	v.SetDefault("engine.delay_max", 0)
	v.SetDefault("notify.buffer_size", 50)
	v.SetDefault("notify.workers", 2)
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "json")
}
