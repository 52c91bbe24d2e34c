package main

import (
	"os"

	"github.com/gogotex/docmanager/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
