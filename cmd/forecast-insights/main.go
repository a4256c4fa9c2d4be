// Command forecast-insights fits a seasonal forecaster on a train CSV, builds forecasting
// insights for a test CSV and saves them to a directory that can be inspected later.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
