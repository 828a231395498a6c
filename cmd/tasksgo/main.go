package main

import (
	"os"

	"tasksgo/cmd/tasksgo/cmd"
)

func main() {
	os.Exit(cmd.Execute(os.Args[1:], os.Stdout, os.Stderr, nil))
}
