package main

import (
	"fmt"
	"os"

	"github.com/kobzarvs/rut/internal/app"
)

func main() {
	if err := newRootCmd(runApp).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "rut:", err)
		os.Exit(1)
	}
}

func runApp(path string) error {
	return app.New(path).Run()
}
