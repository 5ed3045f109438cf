package main

import (
	"context"
	"os"

	"github.com/MrSnakeDoc/otot/internal/app"
)

func main() {
	os.Exit(app.Execute(context.Background(), os.Args[1:]))
}
