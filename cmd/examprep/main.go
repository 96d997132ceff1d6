// Command examprep fits the student performance preprocessing plan and
// applies it to new data.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/YuminosukeSato/examprep/pkg/errors"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := execute(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(exitCode(err))
	}
}

// exitCode maps the error kind to the process status.
func exitCode(err error) int {
	switch errors.KindOf(err) {
	case errors.KindConfiguration:
		return 2
	case errors.KindIO:
		return 3
	case errors.KindData:
		return 4
	default:
		return 1
	}
}
