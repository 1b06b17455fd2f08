package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strings"

	"github.com/spf13/viper"
)

type HTTP struct {
	Host            string
	Port            int
	ReadTimeoutSec  int
	WriteTimeoutSec int
	IdleTimeoutSec  int
}
type AdminHTTP struct {
	Host string
	Port int
}

type App struct {
	Name  string
	Env   string
	HTTP  HTTP
	Admin AdminHTTP
}

type LogFile struct {
	Enable     bool
	Filename   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

type Log struct {
	Level string
	JSON  bool
	File  LogFile
}

type JWT struct {
	Secret             string
	Issuer             string
	AccessTokenTTLMin  int
	RefreshTokenTTLMin int
}

type Redis struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type DB struct {
	Driver             string
	DSN                string
	Username           string
	Password           string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int
	AutoMigrate        bool
	LogLevel           string
}

// Bootstrap 启动时自动创建的超级管理员
type Bootstrap struct {
	Email    string
	Username string
	Password string
}

// Payment Cashfree 下单参数（当前为沙箱测试值）
type Payment struct {
	BaseURL       string
	ClientID      string
	ClientSecret  string
	APIVersion    string
	TimeoutSec    int
	OrderAmount   float64
	Currency      string
	CustomerID    string
	CustomerEmail string
	CustomerPhone string
}

type Limits struct {
	RPS               float64
	Burst             int
	PerIPRPS          float64 // <=0 关闭
	PerIPBurst        int
	MaxInFlight       int64
	MaxBodyBytes      int64
	RequestTimeoutSec int
}

type CORS struct {
	AllowOrigins []string
}

type Bookings struct {
	// OwnerScoped=true 时非 admin 只能看到/修改自己的预约
	OwnerScoped bool
}

type Config struct {
	App       App
	Log       Log
	JWT       JWT
	DB        DB
	Redis     Redis `mapstructure:"redis"`
	Bootstrap Bootstrap
	Payment   Payment
	Limits    Limits
	CORS      CORS `mapstructure:"cors"`
	Bookings  Bookings
}

const defaultPath = "./configs/config.local.yaml"

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "adultcare-api")
	v.SetDefault("app.env", "local")
	v.SetDefault("app.http.host", "0.0.0.0")
	v.SetDefault("app.http.port", 8080)
	v.SetDefault("app.http.readTimeoutSec", 5)
	v.SetDefault("app.http.writeTimeoutSec", 40)
	v.SetDefault("app.http.idleTimeoutSec", 60)
	v.SetDefault("app.admin.host", "0.0.0.0")
	v.SetDefault("app.admin.port", 8081)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)
	v.SetDefault("log.file.enable", false)
	v.SetDefault("log.file.filename", "logs/app.log")
	v.SetDefault("log.file.maxSizeMB", 100)
	v.SetDefault("log.file.maxBackups", 7)
	v.SetDefault("log.file.maxAgeDays", 30)
	v.SetDefault("log.file.compress", false)

	v.SetDefault("jwt.secret", "change-me")
	v.SetDefault("jwt.issuer", "adultcare-api")
	v.SetDefault("jwt.accessTokenTTLMin", 60)
	v.SetDefault("jwt.refreshTokenTTLMin", 60*24)

	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.dsn", "file:adultcare.db?_fk=1")
	v.SetDefault("db.username", "")
	v.SetDefault("db.password", "")
	v.SetDefault("db.maxOpenConns", 20)
	v.SetDefault("db.maxIdleConns", 10)
	v.SetDefault("db.connMaxLifetimeMin", 30)
	v.SetDefault("db.autoMigrate", true)
	v.SetDefault("db.logLevel", "warn")

	// 未知 key 不会被 AutomaticEnv 覆盖，空值也要登记
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("bootstrap.email", "admin@example.com")
	v.SetDefault("bootstrap.username", "admin")
	v.SetDefault("bootstrap.password", "admin123")

	v.SetDefault("payment.baseURL", "https://sandbox.cashfree.com")
	v.SetDefault("payment.clientID", "TEST_ID")
	v.SetDefault("payment.clientSecret", "TEST_SECRET")
	v.SetDefault("payment.apiVersion", "2022-09-01")
	v.SetDefault("payment.timeoutSec", 30)
	v.SetDefault("payment.orderAmount", 100.00)
	v.SetDefault("payment.currency", "INR")
	v.SetDefault("payment.customerID", "cust_001")
	v.SetDefault("payment.customerEmail", "test@example.com")
	v.SetDefault("payment.customerPhone", "9999999999")

	v.SetDefault("limits.rps", 200)
	v.SetDefault("limits.burst", 400)
	v.SetDefault("limits.perIPRPS", 50)
	v.SetDefault("limits.perIPBurst", 100)
	v.SetDefault("limits.maxInFlight", 300)
	v.SetDefault("limits.maxBodyBytes", 16<<20)
	v.SetDefault("limits.requestTimeoutSec", 35)

	v.SetDefault("cors.allowOrigins", []string{"*"})
	v.SetDefault("bookings.ownerScoped", false)
}

// LoadE 读取配置；默认路径下文件不存在时只用默认值 + 环境变量
func LoadE(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	explicit := path != ""
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
		explicit = path != ""
		if path == "" {
			path = defaultPath
		}
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}

func Load(path string) *Config {
	c, err := LoadE(path)
	if err != nil {
		log.Fatalf("%v", err)
	}
	return c
}
