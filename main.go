package main

import (
	"os"

	"github.com/matthewmjones/dissertation-matching/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
