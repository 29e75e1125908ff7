// The main package for the alkoteka-crawler executable.
package main

import (
	"alkoteka-crawler/cmd"
)

// main defers all execution to the Cobra CLI.
func main() {
	cmd.Execute()
}
