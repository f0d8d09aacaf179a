package main

import (
	"os"

	"github.com/kisanmitra/kisanmitra/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
