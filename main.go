package main

import (
	"os"

	"github.com/VVic23/civics-practice/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
