package main

import (
	"os"

	"github.com/adalundhe/codeatlas/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
