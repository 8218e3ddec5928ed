package main

import (
	"os"

	"github.com/sfl-io/sflreport/cmd"
)

func main() {
	code := cmd.Execute()
	os.Exit(code)
}
