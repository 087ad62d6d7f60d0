package main

import "time"

type appConfig struct {
	AppName  string `default:"REA schedule" yaml:"app_name"`
	LogLevel string `default:"info" yaml:"log_level" env:"RASP_LOG_LEVEL,LOG_LEVEL"`

	Schedule struct {
		BaseURL       string        `default:"https://rasp.rea.ru/" yaml:"base_url"`
		URL           string        `yaml:"url" env:"RASP_SCHEDULE_URL,SCHEDULE_URL"`
		Group         string        `default:"15.14д-гг01/24м" yaml:"group" env:"RASP_SCHEDULE_GROUP,SCHEDULE_GROUP"`
		Timeout       time.Duration `default:"20s" yaml:"timeout"`
		Retries       int           `default:"2" yaml:"retries"`
		Weeks         []int         `yaml:"weeks"`
		DetailWorkers int           `default:"4" yaml:"detail_workers"`
		CacheTTL      time.Duration `default:"5m" yaml:"cache_ttl"`
	} `yaml:"schedule"`

	Calendar struct {
		Name  string `default:"Расписание РЭУ" yaml:"name"`
		Color string `default:"#1d9bf0" yaml:"color"`
	} `yaml:"calendar"`

	Server struct {
		Port       string        `default:"3000" yaml:"port"`
		RateLimit  int           `default:"20" yaml:"rate_limit"`
		RateWindow time.Duration `default:"30s" yaml:"rate_window"`
	} `yaml:"server"`

	Telegram struct {
		Token       string  `yaml:"token" env:"RASP_TELEGRAM_TOKEN,TELEGRAM_BOT_TOKEN"`
		DigestSpec  string  `yaml:"digest_spec"`
		DigestChats []int64 `yaml:"digest_chats"`
	} `yaml:"telegram"`
}
