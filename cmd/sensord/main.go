package main

import (
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/Maximiliano2107/penguins/internal/cmd"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Debugln("no .env file found, using environment variables")
	}
	cmd.Execute()
}
