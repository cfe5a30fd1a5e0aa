// Package config loads configuration structs from environment variables.
//
// It combines github.com/joho/godotenv, which reads optional .env files, with
// github.com/caarlos0/env/v11, which fills structs from `env` field tags:
//
//	type Config struct {
//	    Issuer string `env:"TWOFACTOR_ISSUER" envDefault:"SkyBooker"`
//	}
//
//	if err := config.LoadEnv(".env.local"); err != nil {
//	    return err
//	}
//	var cfg Config
//	if err := config.Load(&cfg); err != nil {
//	    return err
//	}
//
// Values exported in the process environment always win over .env files.
// Parse failures wrap ErrParsingConfig.
package config
