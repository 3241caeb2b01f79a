package main

import (
	"fmt"
	"os"
	_ "time/tzdata"

	"github.com/temirov/revreq/cmd/cli"
)

const (
	exitErrorTemplateConstant = "%v\n"
)

// main executes the revreq command-line application.
func main() {
	if executionError := cli.Execute(); executionError != nil {
		fmt.Fprintf(os.Stderr, exitErrorTemplateConstant, executionError)
		os.Exit(1)
	}
}
