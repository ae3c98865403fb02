package main

import (
	"os"

	"deedles.dev/waysmoke/internal/cmd"
	"deedles.dev/waysmoke/internal/logger"
)

var (
	version = "0.1.0-dev"
	commit  string
	date    string
)

func main() {
	cmd.Version, cmd.Commit, cmd.Date = version, commit, date

	if err := cmd.Execute(); err != nil {
		logger.Error("waysmoke", "err", err)
		os.Exit(1)
	}
}
