package config

import "fmt"

// HeaderValues holds the configured value(s) for one header name. The YAML
// form accepts either a single string or a list of strings.
type HeaderValues []string

func (h *HeaderValues) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var single string
	if err := unmarshal(&single); err == nil {
		*h = HeaderValues{single}
		return nil
	}
	var list []string
	if err := unmarshal(&list); err != nil {
		return fmt.Errorf("header value must be a string or a list of strings: %w", err)
	}
	*h = HeaderValues(list)
	return nil
}

// validateHeaders checks every header name against the RFC 7230 "token"
// production and rejects values containing control characters other than
// horizontal tab. A single invalid entry fails the whole parse.
func validateHeaders(headers map[string]HeaderValues) error {
	for name, values := range headers {
		if !isValidToken(name) {
			return fmt.Errorf("invalid header name %q", name)
		}
		for _, v := range values {
			if !isValidHeaderValue(v) {
				return fmt.Errorf("invalid value for header %q: %q", name, v)
			}
		}
	}
	return nil
}

func isValidToken(s string) bool {
	if len(s) == 0 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isTokenChar(s[i]) {
			return false
		}
	}
	return true
}

func isTokenChar(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	}
	switch c {
	case '!', '#', '$', '%', '&', '\'', '*', '+', '-', '.', '^', '_', '`', '|', '~':
		return true
	}
	return false
}

// isValidHeaderValue rejects control characters other than horizontal tab,
// matching the wire rule net/http applies internally before writing a
// header line.
func isValidHeaderValue(v string) bool {
	for i := 0; i < len(v); i++ {
		b := v[i]
		if (b < ' ' && b != '\t') || b == 0x7f {
			return false
		}
	}
	return true
}
