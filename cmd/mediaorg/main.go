package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

func main() {
	err := newRootCommand().Execute()
	if err == nil {
		return
	}
	if errors.Is(err, context.Canceled) {
		// Interrupted by the user; 128+SIGINT.
		os.Exit(130)
	}
	fmt.Fprintln(os.Stderr, "mediaorg:", err)
	os.Exit(1)
}
