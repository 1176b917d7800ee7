package main

import (
	"github.com/spf13/cobra"

	"github.com/windrift/stagehand/pkg/schedule"
	"github.com/windrift/stagehand/pkg/stagelog"
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "stagehand",
	Short: "Stagehand builds and serves Go/WebAssembly apps driving the animation scheduler.",
	Long: `Stagehand compiles a Go-based WebAssembly app built on pkg/schedule
and serves it with live reload, so a timeline's clips/sequences can be
iterated on in a real browser.`,
}

var logLevel string

// appLog is the CLI's own logger, shared by the dev server; built once
// rootCmd's persistent flags have been parsed. Named appLog (not "log")
// so it doesn't collide with files that still import the stdlib "log"
// package for log.Fatal et al.
var appLog schedule.Logger = stagelog.New("info")

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	cobra.OnInitialize(func() {
		appLog = stagelog.New(logLevel)
	})
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(devCmd)
}
