package config

import (
	"errors"
	"flag"
	"net"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Addr          string
	MongoURI      string
	DBName        string
	TokenSecret   string
	TokenTTL      time.Duration
	AdminEmails   []string
	ManagerEmails []string
	Debug         bool
}

func ParseFlags() (Config, error) {
	return ParseArgs(os.Args[1:])
}

func ParseArgs(args []string) (cfg Config, err error) {
	flags := flag.NewFlagSet("anket", flag.ContinueOnError)

	var host string
	flags.StringVar(&host, "host", envOr("ANKET_HOST", "0.0.0.0"), "listen host name")
	var port uint
	flags.UintVar(&port, "port", envUintOr("ANKET_PORT", 8080), "listen port number")
	flags.StringVar(&cfg.MongoURI, "mongo-uri", envOr("ANKET_MONGO_URI", "mongodb://localhost:27017"), "MongoDB connection URI")
	flags.StringVar(&cfg.DBName, "db-name", envOr("ANKET_DB_NAME", "anket"), "database name")
	flags.StringVar(&cfg.TokenSecret, "token-secret", envOr("ANKET_TOKEN_SECRET", ""), "secret key for token encryption and decryption")
	var ttl uint
	flags.UintVar(&ttl, "token-ttl", envUintOr("ANKET_TOKEN_TTL", 1800), "access token TTL in seconds")
	var admins, managers string
	flags.StringVar(&admins, "admin-emails", envOr("ANKET_ADMIN_EMAILS", ""), "comma-separated emails granted the admin role at sign-up")
	flags.StringVar(&managers, "manager-emails", envOr("ANKET_MANAGER_EMAILS", ""), "comma-separated emails granted the manager role at sign-up")
	flags.BoolVar(&cfg.Debug, "debug", os.Getenv("ANKET_DEBUG") == "true", "log at DEBUG level")

	err = flags.Parse(args)
	if err != nil {
		return
	}

	cfg.Addr = net.JoinHostPort(host, strconv.Itoa(int(port)))
	cfg.TokenTTL = time.Duration(ttl) * time.Second
	cfg.AdminEmails = SplitEmails(admins)
	cfg.ManagerEmails = SplitEmails(managers)

	if cfg.TokenSecret == "" {
		err = errors.New("missing parameter -token-secret")
	}

	return
}

// SplitEmails parses a comma-separated email list, trimming blanks.
func SplitEmails(list string) (emails []string) {
	for _, e := range strings.Split(list, ",") {
		e = strings.TrimSpace(e)
		if e != "" {
			emails = append(emails, e)
		}
	}
	return
}

func (cfg Config) Url() (url string) {
	url = cfg.Addr
	url = regexp.MustCompile(`^0.0.0.0`).ReplaceAllString(url, "localhost")
	url = "http://" + url
	return
}

func envOr(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}

func envUintOr(key string, def uint) uint {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.ParseUint(v, 10, 32); err == nil {
			return uint(n)
		}
	}
	return def
}
