//go:build !unix

package toolchain

// BuildTriple returns a triple describing the machine running the build.
func BuildTriple() string {
	return fallbackTriple()
}
