package http

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// body is a decoded JSON object. Sensor firmware sends numbers as strings
// often enough that fields are coerced one by one instead of bound to a
// struct.
type body map[string]any

var leadingNumber = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// decodeBody never fails: an empty or malformed body reads as {}
func decodeBody(c *fiber.Ctx) body {
	var b body
	if err := json.Unmarshal(c.Body(), &b); err != nil || b == nil {
		return body{}
	}
	return b
}

// has reports whether key is present and not null
func (b body) has(key string) bool {
	v, ok := b[key]
	return ok && v != nil
}

// float reads key like a lenient number parse: numeric prefixes of
// strings are accepted, anything else is 0
func (b body) float(key string) float64 {
	f, ok := toFloat(b[key])
	if !ok {
		return 0
	}
	return f
}

// integer reads key and truncates toward zero
func (b body) integer(key string) int {
	f, ok := toFloat(b[key])
	if !ok {
		return 0
	}
	return int(f)
}

// floatOr returns def when key is falsy or not a number. A true flag
// reads as 1.
func (b body) floatOr(key string, def float64) float64 {
	if !b.truthy(key) {
		return def
	}
	if v, ok := b[key].(bool); ok && v {
		return 1
	}
	f, ok := toFloat(b[key])
	if !ok {
		return def
	}
	return f
}

// stringOr returns def when key is falsy
func (b body) stringOr(key, def string) string {
	if !b.truthy(key) {
		return def
	}
	switch v := b[key].(type) {
	case string:
		return v
	default:
		return def
	}
}

// truthy applies loose boolean semantics: false, 0, "", null and missing
// are false; everything else is true
func (b body) truthy(key string) bool {
	switch v := b[key].(type) {
	case nil:
		return false
	case bool:
		return v
	case float64:
		return v != 0 && !math.IsNaN(v)
	case string:
		return v != ""
	default:
		return true
	}
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case string:
		m := leadingNumber.FindString(strings.TrimSpace(x))
		if m == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(m, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
