// Package main is the entry point for the pyskel CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pyskel/cli/internal/cmd"
	oerrors "github.com/pyskel/cli/internal/errors"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := cmd.NewRootCmd().ExecuteContext(ctx)
	stop()
	if err == nil {
		return
	}

	var exitErr *oerrors.ExitError
	printed := errors.As(err, &exitErr) && exitErr.Printed
	if !printed {
		fmt.Fprintln(os.Stderr, err)
	}

	os.Exit(cmd.ExitCodeFromError(err))
}
