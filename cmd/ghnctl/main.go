package main

import (
	"os"

	"github.com/GTDGit/bookstore_api/cmd/ghnctl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
