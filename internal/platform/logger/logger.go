package logger

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options configures New. The zero value is a development logger without
// redaction.
type Options struct {
	// Mode is "production" (JSON), "test" (discard) or anything else for the
	// development console.
	Mode string
	// Level overrides the mode's default level ("debug", "info", ...).
	Level string
	// Redact masks credentials and hashes user identifiers in logged values.
	Redact bool
	// HashSalt is mixed into hashed identifiers.
	HashSalt string
}

type Logger struct {
	SugaredLogger *zap.SugaredLogger
	scrub         *scrubber
}

// New is NewWithOptions with redaction on.
func New(mode string) (*Logger, error) {
	return NewWithOptions(Options{Mode: mode, Redact: true})
}

func NewWithOptions(opts Options) (*Logger, error) {
	scrub := &scrubber{enabled: opts.Redact, salt: opts.HashSalt}

	var cfg zap.Config
	switch strings.ToLower(strings.TrimSpace(opts.Mode)) {
	case "prod", "production":
		cfg = zap.NewProductionConfig()
	case "test", "nop":
		return &Logger{SugaredLogger: zap.NewNop().Sugar(), scrub: scrub}, nil
	default:
		cfg = zap.NewDevelopmentConfig()
	}
	if lvl := strings.TrimSpace(opts.Level); lvl != "" {
		parsed, err := zapcore.ParseLevel(lvl)
		if err != nil {
			return nil, fmt.Errorf("log level %q: %w", lvl, err)
		}
		cfg.Level = zap.NewAtomicLevelAt(parsed)
	}
	zapLogger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return &Logger{SugaredLogger: zapLogger.Sugar(), scrub: scrub}, nil
}

func (l *Logger) Sync() {
	_ = l.SugaredLogger.Sync()
}

func (l *Logger) Debug(msg string, keysAndValues ...any) {
	l.SugaredLogger.Debugw(msg, l.scrub.kvs(keysAndValues)...)
}
func (l *Logger) Info(msg string, keysAndValues ...any) {
	l.SugaredLogger.Infow(msg, l.scrub.kvs(keysAndValues)...)
}
func (l *Logger) Warn(msg string, keysAndValues ...any) {
	l.SugaredLogger.Warnw(msg, l.scrub.kvs(keysAndValues)...)
}
func (l *Logger) Error(msg string, keysAndValues ...any) {
	l.SugaredLogger.Errorw(msg, l.scrub.kvs(keysAndValues)...)
}
func (l *Logger) Fatal(msg string, keysAndValues ...any) {
	l.SugaredLogger.Fatalw(msg, l.scrub.kvs(keysAndValues)...)
}
func (l *Logger) With(keysAndValues ...any) *Logger {
	return &Logger{SugaredLogger: l.SugaredLogger.With(l.scrub.kvs(keysAndValues)...), scrub: l.scrub}
}

// maxLoggedFloats bounds how many matrix or vector entries reach the log.
const maxLoggedFloats = 16

type scrubber struct {
	enabled bool
	salt    string
}

func (s *scrubber) kvs(kv []any) []any {
	if len(kv) == 0 {
		return kv
	}
	out := make([]any, 0, len(kv))
	for i := 0; i < len(kv); i += 2 {
		if i == len(kv)-1 {
			out = append(out, kv[i])
			break
		}
		key := strings.TrimSpace(strings.ToLower(toString(kv[i])))
		out = append(out, toString(kv[i]), s.value(key, kv[i+1]))
	}
	return out
}

func (s *scrubber) value(key string, val any) any {
	val = summarize(val)
	if s == nil || !s.enabled {
		return val
	}
	switch keyClass(key) {
	case classSecret:
		return "[REDACTED]"
	case classIdentity:
		return s.hash(val)
	case classDSN:
		return scrubDSN(toString(val))
	}
	switch v := val.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, inner := range v {
			out[k] = s.value(strings.TrimSpace(strings.ToLower(k)), inner)
		}
		return out
	case []any:
		out := make([]any, 0, len(v))
		for _, inner := range v {
			out = append(out, s.value("", inner))
		}
		return out
	case string:
		if looksLikeJWT(v) {
			return "[REDACTED]"
		}
	}
	return val
}

type class int

const (
	classPlain class = iota
	classSecret
	classIdentity
	classDSN
)

func keyClass(key string) class {
	switch {
	case key == "":
		return classPlain
	case strings.Contains(key, "dsn"), strings.HasSuffix(key, "_url"):
		return classDSN
	case strings.Contains(key, "token"),
		strings.Contains(key, "authorization"),
		strings.Contains(key, "password"),
		strings.Contains(key, "secret"),
		strings.Contains(key, "cookie"),
		strings.Contains(key, "email"):
		return classSecret
	case strings.Contains(key, "user_id"),
		strings.Contains(key, "owner_id"),
		strings.Contains(key, "username"):
		return classIdentity
	default:
		return classPlain
	}
}

// summarize replaces large demand vectors and matrices with their shape.
func summarize(val any) any {
	switch v := val.(type) {
	case []float64:
		if len(v) > maxLoggedFloats {
			return fmt.Sprintf("[%d]float64", len(v))
		}
	case [][]float64:
		n := 0
		for _, row := range v {
			n += len(row)
		}
		if n > maxLoggedFloats {
			cols := 0
			if len(v) > 0 {
				cols = len(v[0])
			}
			return fmt.Sprintf("[%dx%d]float64", len(v), cols)
		}
	}
	return val
}

func (s *scrubber) hash(val any) string {
	raw := toString(val)
	if raw == "" {
		return ""
	}
	h := sha256.New()
	if s.salt != "" {
		_, _ = h.Write([]byte(s.salt))
	}
	_, _ = h.Write([]byte(raw))
	return "hash:" + hex.EncodeToString(h.Sum(nil))[:12]
}

var kvPassword = regexp.MustCompile(`(?i)(password\s*=\s*)(\S+)`)

// scrubDSN masks the password of a URL-form DSN ("postgres://u:p@h/db") or a
// key/value one ("host=h password=p").
func scrubDSN(dsn string) string {
	if u, err := url.Parse(dsn); err == nil && u.Scheme != "" && u.User != nil {
		return u.Redacted()
	}
	return kvPassword.ReplaceAllString(dsn, "${1}xxxxx")
}

func looksLikeJWT(s string) bool {
	parts := strings.Split(s, ".")
	return len(parts) == 3 && len(parts[0]) > 10 && len(parts[1]) > 10
}

func toString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}
