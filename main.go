package main

import (
	"context"
	"fmt"
	"os"

	"fjacquet/portfolio-parser/cmd/parse"
	"fjacquet/portfolio-parser/cmd/root"
	"fjacquet/portfolio-parser/cmd/worker"
)

func init() {
	root.Init()

	root.Cmd.AddCommand(worker.Cmd)
	root.Cmd.AddCommand(parse.Cmd)
}

func main() {
	if err := root.Cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
