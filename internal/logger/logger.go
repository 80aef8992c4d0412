package logger

import (
	"io"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
)

type Options struct {
	Service string
	Env     string
	Level   string
	Out     io.Writer
}

// New は標準のlogrusを設定して service/env 付きのEntryを返す
// dev以外はJSONで出す
func New(opts Options) *log.Entry {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	l := log.New()
	l.SetOutput(out)
	l.SetLevel(parseLevel(opts.Level))
	if opts.Env == "dev" {
		l.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	} else {
		l.SetFormatter(&log.JSONFormatter{})
	}

	return l.WithFields(log.Fields{
		"service": opts.Service,
		"env":     opts.Env,
	})
}

func parseLevel(lvl string) log.Level {
	switch strings.ToLower(strings.TrimSpace(lvl)) {
	case "debug":
		return log.DebugLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}
