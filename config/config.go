package config

import (
	"errors"
	"flag"
	"net"
	"os"
	"regexp"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type OpenAI struct {
	APIKey    string
	Model     string
	MaxTokens int
}

type Config struct {
	Addr        string
	DBUrl       string
	TokenSecret string
	TokenTTL    time.Duration
	MaxBodySize int64
	OpenAI      OpenAI
	Debug       bool
}

func ParseFlags() (cfg Config, err error) {
	// .env is optional; flags and the real environment win
	godotenv.Load()

	var host string
	flag.StringVar(&host, "host", "0.0.0.0", "listen host name (default 0.0.0.0)")
	var port uint
	flag.UintVar(&port, "port", 3001, "listen port number (default 3001)")
	flag.StringVar(&cfg.DBUrl, "db-url", "audits.sqlite", "path to SQLite3 DB file (default audits.sqlite)")
	flag.StringVar(&cfg.TokenSecret, "token-secret", "", "secret key for token encryption and decryption")
	var ttl uint
	flag.UintVar(&ttl, "token-ttl", 120, "token TTL in seconds (default 120)")
	var maxBody uint
	flag.UintVar(&maxBody, "max-body-mb", 50, "max request body size in MB (default 50)")
	flag.BoolVar(&cfg.Debug, "debug", false, "log at DEBUG level")
	flag.Parse()

	cfg.Addr = net.JoinHostPort(host, strconv.Itoa(int(port)))
	cfg.TokenTTL = time.Duration(ttl) * time.Second
	// photos arrive base64-encoded, requests get big
	cfg.MaxBodySize = int64(maxBody) << 20

	cfg.OpenAI = OpenAI{
		APIKey: os.Getenv("OPENAI_API_KEY"),
		Model:  os.Getenv("OPENAI_MODEL"),
	}
	if tokens := os.Getenv("OPENAI_MAX_TOKENS"); tokens != "" {
		cfg.OpenAI.MaxTokens, _ = strconv.Atoi(tokens)
	}

	if cfg.TokenSecret == "" {
		err = errors.New("missing parameter -token-secret")
	}

	return
}

func (cfg Config) Url() (url string) {
	url = cfg.Addr
	url = regexp.MustCompile(`^0.0.0.0`).ReplaceAllString(url, "localhost")
	url = "http://" + url
	return
}
