package main

import (
	"log/slog"
	"os"

	"github.com/billbatista/acasinha-quotes/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		printErrorAndExit("acasinha-quotes", err)
	}
}

func printErrorAndExit(msg string, e error) {
	slog.Error(msg, "error", e)
	os.Exit(1)
}
