package main

import (
	"context"
	"fmt"
	"os"

	"github.com/kailas-cloud/drugfacts/internal/transport/cli"
)

func main() {
	if err := cli.Execute(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "drugfacts:", err)
		os.Exit(1)
	}
}
