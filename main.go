package main

import (
	"os"

	"hubspot-proxy/internal/app"
)

func main() {
	if err := app.Run(); err != nil {
		os.Exit(1)
	}
}
