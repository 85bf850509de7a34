package toolchain

import "runtime"

var archNames = map[string]string{
	"amd64": "x86_64",
	"386":   "i686",
	"arm64": "aarch64",
}

func fallbackTriple() string {
	arch := runtime.GOARCH
	if name, ok := archNames[arch]; ok {
		arch = name
	}
	return arch + "-" + runtime.GOOS
}
