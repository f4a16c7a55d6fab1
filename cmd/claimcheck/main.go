package main

import (
	"errors"
	"fmt"
	"os"

	"adaptive-truth/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		// The failure message has already been printed
		if !errors.Is(err, cli.ErrVerificationFailed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
