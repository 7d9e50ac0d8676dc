package main

import (
	"os"

	"github.com/solatis/roundsapi/cmd/roundsapi/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
