// Command td manages the agency's influencer roster and collaborations
// from the terminal.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			os.Exit(130)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
