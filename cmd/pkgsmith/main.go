package main

import "github.com/oshokin/pkgsmith/cmd/pkgsmith/cmd"

func main() {
	cmd.Execute()
}
