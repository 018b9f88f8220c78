// main is the entry point for the seobench CLI.
package main

import (
	"github.com/huangsam/seobench/cmd"
	"github.com/huangsam/seobench/internal/contract"
)

func main() {
	defer func() {
		if err := cmd.StopProfiling(); err != nil {
			contract.LogWarn("Failed to stop profiling", err)
		}
		if err := cmd.CloseLedger(); err != nil {
			contract.LogWarn("Failed to close ledger", err)
		}
	}()
	if err := cmd.Execute(); err != nil {
		contract.LogFatal("Command failed", err)
	}
}
