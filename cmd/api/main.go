package main

import (
	"fmt"
	"os"

	"github.com/metinatakli/cinex/internal/app"
)

func main() {
	if err := app.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "cinex-api: %v\n", err)
		os.Exit(1)
	}
}
