package main

import (
	"os"

	"github.com/harrylevesque/deviceadmin/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
