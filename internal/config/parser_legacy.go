package config

import (
	"fmt"
	"strconv"
	"strings"
)

// parseLegacy reads the original key=value config format. Keys are the
// dotted JSONC paths; values may be bare, double-quoted, or single-quoted.
// Lines starting with # are comments.
func parseLegacy(content string, base Config) (Config, []Warning, error) {
	cfg := base

	for idx, raw := range strings.Split(content, "\n") {
		lineNo := idx + 1
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, rawValue, found := strings.Cut(line, "=")
		if !found {
			return Config{}, nil, fmt.Errorf("line %d: expected key = value", lineNo)
		}

		value, err := unquoteValue(strings.TrimSpace(rawValue))
		if err != nil {
			return Config{}, nil, fmt.Errorf("line %d: %w", lineNo, err)
		}

		if err := applyLegacyKey(&cfg, strings.TrimSpace(key), value); err != nil {
			return Config{}, nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
	}

	warnings, err := Validate(cfg)
	if err != nil {
		return Config{}, nil, err
	}
	return cfg, warnings, nil
}

func applyLegacyKey(cfg *Config, key, value string) error {
	switch key {
	case "engine.addr":
		cfg.Engine.Addr = value
		return nil
	case "engine.connect_timeout_ms":
		return setLegacyInt(&cfg.Engine.ConnectTimeoutMS, key, value)
	case "engine.reply_timeout_ms":
		return setLegacyInt(&cfg.Engine.ReplyTimeoutMS, key, value)
	case "engine.receive_buffer_bytes":
		return setLegacyInt(&cfg.Engine.ReceiveBufferBytes, key, value)
	case "demo.startup_settle_ms":
		return setLegacyInt(&cfg.Demo.StartupSettleMS, key, value)
	case "demo.load_settle_ms":
		return setLegacyInt(&cfg.Demo.LoadSettleMS, key, value)
	case "demo.mid_load_percent":
		return setLegacyInt(&cfg.Demo.MidLoadPercent, key, value)
	case "demo.restricted_load_percent":
		return setLegacyInt(&cfg.Demo.RestrictedLoadPercent, key, value)
	case "watch.interval_ms":
		return setLegacyInt(&cfg.Watch.IntervalMS, key, value)
	case "shell.history_limit":
		return setLegacyInt(&cfg.Shell.HistoryLimit, key, value)
	default:
		return fmt.Errorf("unknown key %q", key)
	}
}

func setLegacyInt(target *int, key, value string) error {
	n, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("%s expects an integer, got %q", key, value)
	}
	*target = n
	return nil
}

// unquoteValue strips one level of matching quotes. Inline # comments are
// only recognized outside quotes.
func unquoteValue(value string) (string, error) {
	if value == "" {
		return "", nil
	}

	if value[0] == '"' || value[0] == '\'' {
		quote := value[0]
		end := strings.IndexByte(value[1:], quote)
		if end < 0 {
			if quote == '\'' {
				return "", fmt.Errorf("missing closing single quote")
			}
			return "", fmt.Errorf("missing closing double quote")
		}
		inner := value[1 : 1+end]
		rest := strings.TrimSpace(value[2+end:])
		if rest != "" && !strings.HasPrefix(rest, "#") {
			return "", fmt.Errorf("unexpected trailing content %q", rest)
		}
		return inner, nil
	}

	if idx := strings.IndexByte(value, '#'); idx >= 0 {
		value = strings.TrimSpace(value[:idx])
	}
	return value, nil
}
