package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jhoicas/intelliservice-api/internal/cli"

	_ "github.com/jhoicas/intelliservice-api/docs"
)

func main() {
	if err := cli.RootCommand(cli.DefaultEnv()).ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
