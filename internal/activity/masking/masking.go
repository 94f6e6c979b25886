package masking

import (
	"strings"
	"unicode/utf8"
)

const redacted = "[redacted]"

type rule struct {
	fragment string
	mask     func(string) string
}

// Credentials are removed entirely. Supplier phone numbers keep their last
// three digits so a manager can still tell two contacts apart.
var rules = []rule{
	{"password", func(string) string { return redacted }},
	{"secret", func(string) string { return redacted }},
	{"token", func(string) string { return redacted }},
	{"phone", maskPhone},
}

// MaskMetadata copies activity metadata, masking values whose key matches a
// rule. Nested maps and slices are walked; blank keys are dropped.
func MaskMetadata(input map[string]any) map[string]any {
	if len(input) == 0 {
		return nil
	}
	out := make(map[string]any, len(input))
	for key, value := range input {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		out[key] = walk(ruleFor(key), value)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func walk(r *rule, value any) any {
	switch v := value.(type) {
	case map[string]any:
		if r == nil {
			return MaskMetadata(v)
		}
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[key] = walk(r, item)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = walk(r, item)
		}
		return out
	case string:
		if r == nil {
			return v
		}
		return r.mask(v)
	case nil:
		return nil
	}
	if r != nil {
		return redacted
	}
	return value
}

func ruleFor(key string) *rule {
	lower := strings.ToLower(key)
	for i := range rules {
		if strings.Contains(lower, rules[i].fragment) {
			return &rules[i]
		}
	}
	return nil
}

func maskPhone(value string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, value)
	if utf8.RuneCountInString(digits) <= 3 {
		return redacted
	}
	return strings.Repeat("*", len(digits)-3) + digits[len(digits)-3:]
}
