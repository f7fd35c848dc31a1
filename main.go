package main

import (
	"os"

	"github.com/plyght/wax/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
