// Command nosetenv runs the nosetenv analyzer over the given packages.
//
//	go run ./tools/linters -test ./...
package main

import "golang.org/x/tools/go/analysis/singlechecker"

func main() {
	singlechecker.Main(Analyzer)
}
