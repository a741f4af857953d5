package main

import (
	"os"

	"github.com/govfinance-admin/govfinance-admin/app"
)

func main() {
	err := app.Execute()
	if err != nil {
		os.Exit(1)
	}
}
