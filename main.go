package main

import (
	"context"
	"fmt"
	"os"

	"github.com/shandysiswandi/mailbite/internal/cmd"
)

func main() {
	if err := cmd.NewRootCommand(cmd.Config{Out: os.Stdout}).ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
