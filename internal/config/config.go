package config

import (
	"errors"
	"time"
)

// DefaultSystemInstruction is the AgriBot persona sent to every generative
// provider call. It keeps the assistant on agricultural topics and in plain
// Indonesian.
const DefaultSystemInstruction = "Kamu adalah AgriBot, asisten AI ahli dari aplikasi Agribuddy. " +
	"Misi utamamu adalah membantu petani, mahasiswa agrikultur, dan masyarakat umum di Indonesia. " +
	"Aturan Penting: 1. Fokus Topik: Jawab HANYA pertanyaan yang berhubungan dengan pertanian, perkebunan, " +
	"agribisnis, tanaman pangan, hortikultura, hama & penyakit tanaman, pupuk, kesuburan tanah, irigasi, " +
	"dan topik agrikultur terkait lainnya. 2. Tolak Pertanyaan di Luar Topik: Jika ada pertanyaan di luar topik " +
	"(misalnya tentang politik, film, atau matematika), TOLAK dengan sopan. Contoh: 'Maaf, sebagai AgriBot, " +
	"saya hanya bisa membantu dengan pertanyaan seputar dunia pertanian.' 3. Bahasa Sederhana: Gunakan bahasa " +
	"Indonesia yang jelas, sederhana, dan mudah dipahami oleh petani atau orang awam. Hindari istilah teknis " +
	"yang rumit. 4. Jawaban Ringkas & Padat: Berikan jawaban yang langsung ke inti, tidak bertele-tele, namun " +
	"tetap mencakup poin-poin penting. Gunakan daftar bernomor atau poin-poin jika memungkinkan untuk " +
	"mempermudah pembacaan."

// Config is the application configuration root
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	AI        AIConfig        `mapstructure:"ai"`
	Log       LogConfig       `mapstructure:"log"`
	Postgres  PostgresConfig  `mapstructure:"postgres"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Knowledge KnowledgeConfig `mapstructure:"knowledge"`
	Upload    UploadConfig    `mapstructure:"upload"`
}

// ServerConfig HTTP server settings
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Mode         string        `mapstructure:"mode"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// AIConfig generative provider settings
type AIConfig struct {
	Vision            VisionConfig  `mapstructure:"vision"`
	Text              TextConfig    `mapstructure:"text"`
	SystemInstruction string        `mapstructure:"system_instruction"`
	ProviderTimeout   time.Duration `mapstructure:"provider_timeout"` // upper bound on one routed provider call
	TitleTimeout      time.Duration `mapstructure:"title_timeout"`    // deadline for title generation, failures fall back
}

// VisionConfig vision-capable provider (accepts binary attachments)
type VisionConfig struct {
	Provider string          `mapstructure:"provider"` // openai, azure, ark
	Model    string          `mapstructure:"model"`
	APIKey   string          `mapstructure:"api_key"`
	BaseURL  string          `mapstructure:"base_url"`
	Options  AIOptionsConfig `mapstructure:"options"`
}

// TextConfig fast text provider (OpenAI-compatible chat completions)
type TextConfig struct {
	Model   string        `mapstructure:"model"`
	APIKey  string        `mapstructure:"api_key"`
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// AIOptionsConfig model sampling parameters
type AIOptionsConfig struct {
	Temperature float64 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	TopP        float64 `mapstructure:"top_p"`
}

// LogConfig zerolog settings
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	FilePath   string `mapstructure:"file_path"`
	TimeFormat string `mapstructure:"time_format"`
}

// PostgresConfig relational store settings
type PostgresConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// RedisConfig cache settings
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// KnowledgeConfig knowledge-base settings
type KnowledgeConfig struct {
	CacheTTL time.Duration `mapstructure:"cache_ttl"` // how long the FAQ list may be served from cache
}

// UploadConfig attachment handling
type UploadConfig struct {
	MaxSize int64 `mapstructure:"max_size"` // bytes; attachments are held in memory for one request
}

// Validate checks the configuration for values the server cannot start with
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return errors.New("invalid server port")
	}

	validModes := map[string]bool{"debug": true, "release": true, "test": true}
	if !validModes[c.Server.Mode] {
		return errors.New("invalid server mode, must be debug/release/test")
	}

	if c.Postgres.DSN == "" {
		return errors.New("postgres.dsn is required")
	}

	if c.Upload.MaxSize <= 0 {
		return errors.New("upload.max_size must be positive")
	}

	return nil
}
