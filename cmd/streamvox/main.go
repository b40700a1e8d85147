package main

import (
	"os"

	"github.com/msto63/streamvox/cmd/streamvox/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
