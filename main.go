package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"

	"cf-pages-cli/cmd"
)

func main() {
	// Load environment variables from .env.local and .env if present, without
	// overriding variables that are already set. Handy for keeping
	// CLOUDFLARE_TOKEN out of shell history during development.
	loadEnvNoOverride(".env.local")
	loadEnvNoOverride(".env")
	cmd.Execute()
}

func loadEnvNoOverride(filename string) {
	m, err := godotenv.Read(filename)
	if err != nil {
		return
	}
	for k, v := range m {
		if _, exists := os.LookupEnv(k); exists {
			continue
		}
		if err := os.Setenv(k, v); err != nil {
			log.Printf("warn: failed setting env %s from %s: %v", k, filename, err)
		}
	}
}
