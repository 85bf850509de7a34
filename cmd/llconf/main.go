package main

import "github.com/goplus/llconf/cmd/llconf/internal"

func main() {
	internal.Execute()
}
