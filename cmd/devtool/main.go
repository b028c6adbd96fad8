package main

import (
	"os"

	"staylink-admin/cmd/devtool/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
