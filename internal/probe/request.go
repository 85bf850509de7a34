package probe

import (
	"fmt"
	"strings"
)

// Request names a probe to run together with its arguments.
//
// The textual form is name[:arg,arg...][>=version], e.g. "graphics:gl,glu"
// or "pango:cairo>=1.20".
type Request struct {
	Name    string
	Args    []string
	Version string // Minimum version, empty for any
	// Mandatory requests fail the session when the probe fails.
	Mandatory bool
}

// ParseRequest parses the textual form of a request.
func ParseRequest(s string) (Request, error) {
	var req Request
	s = strings.TrimSpace(s)
	if i := strings.Index(s, ">="); i >= 0 {
		req.Version = strings.TrimSpace(s[i+2:])
		s = strings.TrimSpace(s[:i])
		if req.Version == "" {
			return Request{}, fmt.Errorf("invalid feature request %q: empty version", s)
		}
	}
	name, args, hasArgs := strings.Cut(s, ":")
	req.Name = strings.TrimSpace(name)
	if req.Name == "" {
		return Request{}, fmt.Errorf("invalid feature request %q: empty name", s)
	}
	if hasArgs {
		for _, a := range strings.Split(args, ",") {
			if a = strings.TrimSpace(a); a != "" {
				req.Args = append(req.Args, a)
			}
		}
	}
	return req, nil
}

func (r Request) String() string {
	s := r.Name
	if len(r.Args) > 0 {
		s += ":" + strings.Join(r.Args, ",")
	}
	if r.Version != "" {
		s += ">=" + r.Version
	}
	return s
}
