package env

import (
	"fmt"
	"strings"
)

// maxSubstDepth bounds recursive expansion of self-referencing values.
const maxSubstDepth = 16

// Subst expands $NAME and ${NAME} references in s using the values of e.
// Values in extra take precedence over e and are typically TARGET and
// SOURCE. Expansion is recursive, so a value may refer to other keys.
// Unknown names expand to the empty string and "$$" yields a literal "$".
func (e *Env) Subst(s string, extra map[string]string) string {
	return e.subst(s, extra, 0)
}

func (e *Env) subst(s string, extra map[string]string, depth int) string {
	if depth > maxSubstDepth {
		return ""
	}
	if !strings.Contains(s, "$") {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '$' || i+1 == len(s) {
			b.WriteByte(c)
			continue
		}
		next := s[i+1]
		switch {
		case next == '$':
			b.WriteByte('$')
			i++
		case next == '{':
			end := strings.IndexByte(s[i+2:], '}')
			if end < 0 {
				b.WriteString(s[i:])
				return b.String()
			}
			name := s[i+2 : i+2+end]
			b.WriteString(e.lookup(name, extra, depth))
			i += end + 2
		case isNameStart(next):
			j := i + 1
			for j < len(s) && isNameChar(s[j]) {
				j++
			}
			b.WriteString(e.lookup(s[i+1:j], extra, depth))
			i = j - 1
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func (e *Env) lookup(name string, extra map[string]string, depth int) string {
	if v, ok := extra[name]; ok {
		return v
	}
	return e.subst(toString(e.vars[name]), extra, depth+1)
}

func toString(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case []string:
		return strings.Join(v, " ")
	case bool:
		if v {
			return "1"
		}
		return ""
	}
	return fmt.Sprint(v)
}

func isNameStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isNameChar(c byte) bool {
	return isNameStart(c) || (c >= '0' && c <= '9')
}
