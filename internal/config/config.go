package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// ServerConfig HTTP сервер
type ServerConfig struct {
	Host string
	Port int
}

func (s ServerConfig) Addr() string {
	host := s.Host
	if host == "" {
		host = "0.0.0.0"
	}
	return fmt.Sprintf("%s:%d", host, s.Port)
}

// MySQLConfig подключение к базе
type MySQLConfig struct {
	DSN string
}

// Config приложение целиком
type Config struct {
	Server ServerConfig
	MySQL  MySQLConfig
}

// Default конфигурация по умолчанию, чтобы проект запускался без файла
func Default() *Config {
	return &Config{
		Server: ServerConfig{Host: "0.0.0.0", Port: 8080},
		MySQL: MySQLConfig{
			DSN: "root:root@tcp(127.0.0.1:3306)/ecommerce_api?charset=utf8mb4&parseTime=True&loc=Local",
		},
	}
}

// Load читает config.yaml из path (если есть) поверх значений по умолчанию.
// Переменные окружения с префиксом ECOM перекрывают и то и другое
// (ECOM_SERVER_PORT, ECOM_MYSQL_DSN).
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(path)

	def := Default()
	v.SetDefault("server.host", def.Server.Host)
	v.SetDefault("server.port", def.Server.Port)
	v.SetDefault("mysql.dsn", def.MySQL.DSN)

	v.SetEnvPrefix("ECOM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// отсутствие файла не ошибка, остаёмся на дефолтах
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
