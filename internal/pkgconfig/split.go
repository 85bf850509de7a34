package pkgconfig

import (
	"strings"

	"github.com/mattn/go-shellwords"
)

// Split breaks s into words with POSIX shell quoting rules. References
// such as $NAME are kept as written. Text the shell grammar rejects, like
// an unterminated quote, is split on blanks instead.
func Split(s string) []string {
	words, err := shellwords.Parse(s)
	if err != nil {
		return strings.Fields(s)
	}
	if len(words) == 0 {
		return nil
	}
	return words
}
