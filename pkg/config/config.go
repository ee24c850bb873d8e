package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server ServerConfig `mapstructure:"server"`
	MySQL  MySQLConfig  `mapstructure:"mysql"`
	Redis  RedisConfig  `mapstructure:"redis"`
	MQ     MQConfig     `mapstructure:"mq"`
	JWT    JWTConfig    `mapstructure:"jwt"`
	Game   GameConfig   `mapstructure:"game"`
}

type ServerConfig struct {
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type MySQLConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type MQConfig struct {
	Url       string `mapstructure:"url"`
	QueueName string `mapstructure:"queue_name"`
}

type JWTConfig struct {
	Secret         string `mapstructure:"secret"`
	ExpireDuration string `mapstructure:"expire_duration"`
}

type GameConfig struct {
	TickRate         int     `mapstructure:"tick_rate"`
	SnapshotEvery    int     `mapstructure:"snapshot_every"`
	MaxSpeed         float64 `mapstructure:"max_speed"`
	MaxKickForce     float64 `mapstructure:"max_kick_force"`
	KickRange        float64 `mapstructure:"kick_range"`
	PossessionRadius float64 `mapstructure:"possession_radius"`
	Friction         float64 `mapstructure:"friction"`
	FieldHalfWidth   float64 `mapstructure:"field_half_width"`
	FieldHalfLength  float64 `mapstructure:"field_half_length"`
	GoalHalfWidth    float64 `mapstructure:"goal_half_width"`
	GoalDepth        float64 `mapstructure:"goal_depth"`
	IdleTimeout      int     `mapstructure:"idle_timeout"` // seconds
	InputQueueSize   int     `mapstructure:"input_queue_size"`
	SendQueueSize    int     `mapstructure:"send_queue_size"`
}

var AppConfig *Config

func InitConfig() {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	if err := viper.ReadInConfig(); err != nil {
		log.Fatalf("Error reading config: %v", err)
	}
	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Unable to decode config: %v", err)
	}
	if _, err := time.ParseDuration(AppConfig.JWT.ExpireDuration); err != nil {
		log.Fatalf("Invalid jwt.expire_duration %q: %v", AppConfig.JWT.ExpireDuration, err)
	}
}
