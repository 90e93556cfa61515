package main

import (
	"os"

	_ "github.com/joho/godotenv/autoload"

	"github.com/timada-org/todo/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
