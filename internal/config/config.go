package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"mathquiz/internal/domain"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Quiz domain.QuizConfig `yaml:"quiz"`
	Log  struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

// Load reads YAML config from path.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// QuizSettings fills unset quiz values with the defaults and validates the result.
func (c Config) QuizSettings() (domain.QuizConfig, error) {
	q := c.Quiz
	def := domain.DefaultQuizConfig()
	if q.QuestionTimeout == 0 {
		q.QuestionTimeout = def.QuestionTimeout
	}
	if q.NumberOfAnswers == 0 {
		q.NumberOfAnswers = def.NumberOfAnswers
	}
	if q.NumberOfQuestions == 0 {
		q.NumberOfQuestions = def.NumberOfQuestions
	}
	if q.NumberOfBestResults == 0 {
		q.NumberOfBestResults = def.NumberOfBestResults
	}
	if err := q.Validate(); err != nil {
		return domain.QuizConfig{}, err
	}
	return q, nil
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
