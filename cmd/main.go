package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newCLI(os.Stdout).Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
