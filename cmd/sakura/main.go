package main

import (
	"os"

	"github.com/sakura-events/sakura-backend/internal/commands"
)

func main() {
	os.Exit(commands.Execute())
}
