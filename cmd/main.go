package main

import (
	"os"

	"github.com/rs/zerolog/log"

	"mathquiz/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		log.Error().Err(err).Msg("mathquiz failed")
		os.Exit(1)
	}
}
