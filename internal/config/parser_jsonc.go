package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

type jsoncConfig struct {
	Engine *jsoncEngine `json:"engine"`
	Demo   *jsoncDemo   `json:"demo"`
	Watch  *jsoncWatch  `json:"watch"`
	Shell  *jsoncShell  `json:"shell"`
}

type jsoncEngine struct {
	Addr               *string `json:"addr"`
	ConnectTimeoutMS   *int    `json:"connect_timeout_ms"`
	ReplyTimeoutMS     *int    `json:"reply_timeout_ms"`
	ReceiveBufferBytes *int    `json:"receive_buffer_bytes"`
}

type jsoncDemo struct {
	StartupSettleMS       *int `json:"startup_settle_ms"`
	LoadSettleMS          *int `json:"load_settle_ms"`
	MidLoadPercent        *int `json:"mid_load_percent"`
	RestrictedLoadPercent *int `json:"restricted_load_percent"`
}

type jsoncWatch struct {
	IntervalMS *int `json:"interval_ms"`
}

type jsoncShell struct {
	HistoryLimit *int `json:"history_limit"`
}

func parseJSONC(content string, base Config) (Config, []Warning, error) {
	normalized, err := normalizeJSONC(content)
	if err != nil {
		return Config{}, nil, err
	}

	decoder := json.NewDecoder(strings.NewReader(normalized))
	decoder.DisallowUnknownFields()

	var payload jsoncConfig
	if err := decoder.Decode(&payload); err != nil {
		return Config{}, nil, wrapJSONDecodeError(normalized, err)
	}
	if err := ensureSingleJSONValue(decoder); err != nil {
		return Config{}, nil, wrapJSONDecodeError(normalized, err)
	}

	cfg := base
	payload.applyTo(&cfg)

	warnings, err := Validate(cfg)
	if err != nil {
		return Config{}, nil, err
	}
	return cfg, warnings, nil
}

func (payload jsoncConfig) applyTo(cfg *Config) {
	if payload.Engine != nil {
		if payload.Engine.Addr != nil {
			cfg.Engine.Addr = strings.TrimSpace(*payload.Engine.Addr)
		}
		if payload.Engine.ConnectTimeoutMS != nil {
			cfg.Engine.ConnectTimeoutMS = *payload.Engine.ConnectTimeoutMS
		}
		if payload.Engine.ReplyTimeoutMS != nil {
			cfg.Engine.ReplyTimeoutMS = *payload.Engine.ReplyTimeoutMS
		}
		if payload.Engine.ReceiveBufferBytes != nil {
			cfg.Engine.ReceiveBufferBytes = *payload.Engine.ReceiveBufferBytes
		}
	}

	if payload.Demo != nil {
		if payload.Demo.StartupSettleMS != nil {
			cfg.Demo.StartupSettleMS = *payload.Demo.StartupSettleMS
		}
		if payload.Demo.LoadSettleMS != nil {
			cfg.Demo.LoadSettleMS = *payload.Demo.LoadSettleMS
		}
		if payload.Demo.MidLoadPercent != nil {
			cfg.Demo.MidLoadPercent = *payload.Demo.MidLoadPercent
		}
		if payload.Demo.RestrictedLoadPercent != nil {
			cfg.Demo.RestrictedLoadPercent = *payload.Demo.RestrictedLoadPercent
		}
	}

	if payload.Watch != nil && payload.Watch.IntervalMS != nil {
		cfg.Watch.IntervalMS = *payload.Watch.IntervalMS
	}

	if payload.Shell != nil && payload.Shell.HistoryLimit != nil {
		cfg.Shell.HistoryLimit = *payload.Shell.HistoryLimit
	}
}

func normalizeJSONC(content string) (string, error) {
	withoutComments, err := stripJSONCComments(content)
	if err != nil {
		return "", err
	}
	return stripJSONCTrailingCommas(withoutComments), nil
}

func stripJSONCComments(content string) (string, error) {
	var out strings.Builder
	out.Grow(len(content))

	inString := false
	escape := false
	lineComment := false
	blockComment := false

	for i := 0; i < len(content); i++ {
		ch := content[i]

		if lineComment {
			if ch == '\n' {
				lineComment = false
				out.WriteByte(ch)
				continue
			}
			if ch == '\r' {
				lineComment = false
				out.WriteByte(ch)
				continue
			}
			out.WriteByte(' ')
			continue
		}

		if blockComment {
			if ch == '*' && i+1 < len(content) && content[i+1] == '/' {
				blockComment = false
				out.WriteString("  ")
				i++
				continue
			}
			if ch == '\n' || ch == '\r' || ch == '\t' {
				out.WriteByte(ch)
			} else {
				out.WriteByte(' ')
			}
			continue
		}

		if inString {
			out.WriteByte(ch)
			if escape {
				escape = false
				continue
			}
			if ch == '\\' {
				escape = true
				continue
			}
			if ch == '"' {
				inString = false
			}
			continue
		}

		if ch == '"' {
			inString = true
			out.WriteByte(ch)
			continue
		}

		if ch == '/' && i+1 < len(content) {
			next := content[i+1]
			if next == '/' {
				lineComment = true
				out.WriteString("  ")
				i++
				continue
			}
			if next == '*' {
				blockComment = true
				out.WriteString("  ")
				i++
				continue
			}
		}

		out.WriteByte(ch)
	}

	if blockComment {
		return "", fmt.Errorf("unterminated block comment in JSONC")
	}

	return out.String(), nil
}

func stripJSONCTrailingCommas(content string) string {
	var out strings.Builder
	out.Grow(len(content))

	inString := false
	escape := false

	for i := 0; i < len(content); i++ {
		ch := content[i]

		if inString {
			out.WriteByte(ch)
			if escape {
				escape = false
				continue
			}
			if ch == '\\' {
				escape = true
				continue
			}
			if ch == '"' {
				inString = false
			}
			continue
		}

		if ch == '"' {
			inString = true
			out.WriteByte(ch)
			continue
		}

		if ch == ',' {
			j := i + 1
			for j < len(content) && isJSONWhitespace(content[j]) {
				j++
			}
			if j < len(content) && (content[j] == '}' || content[j] == ']') {
				continue
			}
		}

		out.WriteByte(ch)
	}

	return out.String()
}

func isJSONWhitespace(ch byte) bool {
	switch ch {
	case ' ', '\n', '\r', '\t':
		return true
	default:
		return false
	}
}

func ensureSingleJSONValue(decoder *json.Decoder) error {
	var extra struct{}
	err := decoder.Decode(&extra)
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err == nil {
		return fmt.Errorf("multiple JSON values are not allowed")
	}
	return err
}

func wrapJSONDecodeError(content string, err error) error {
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		line, col := offsetToLineCol(content, syntaxErr.Offset)
		return fmt.Errorf("line %d column %d: %w", line, col, err)
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		line, col := offsetToLineCol(content, typeErr.Offset)
		return fmt.Errorf("line %d column %d: %w", line, col, err)
	}

	return err
}

func offsetToLineCol(content string, offset int64) (int, int) {
	if offset <= 0 {
		return 1, 1
	}

	limit := int(offset)
	if limit > len(content) {
		limit = len(content)
	}

	line := 1
	col := 1
	for i := 0; i < limit-1; i++ {
		if content[i] == '\n' {
			line++
			col = 1
			continue
		}
		col++
	}
	return line, col
}
