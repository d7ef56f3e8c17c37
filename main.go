package main

import (
	"os"

	"github.com/oakwood-commons/hivedit/cmd"
	"github.com/oakwood-commons/hivedit/pkg/logger"
)

func main() {
	exitCode := 0
	if err := cmd.Execute(); err != nil {
		cmd.PrintError(os.Stderr, err)
		exitCode = 1
	}

	logger.Sync()
	if exitCode != 0 {
		os.Exit(exitCode)
	}
}
