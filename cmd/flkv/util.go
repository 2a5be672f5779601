package main

import (
	"strings"

	"github.com/rawbytedev/flkv/configs"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	// Wrap is the number of characters to Wrap the help text at
	Wrap int = 50
)

// WrapString wraps a string at Wrap characters
func WrapString(text string) string {
	var wrappedLines []string
	var currentLine strings.Builder
	lineWidth := 0

	for _, word := range strings.Fields(text) {
		if lineWidth > 0 && lineWidth+1+len(word) > Wrap {
			wrappedLines = append(wrappedLines, currentLine.String())
			currentLine.Reset()
			lineWidth = 0
		}
		if lineWidth > 0 {
			currentLine.WriteString(" ")
			lineWidth++
		}
		currentLine.WriteString(word)
		lineWidth += len(word)
	}
	if currentLine.Len() > 0 {
		wrappedLines = append(wrappedLines, currentLine.String())
	}
	return strings.Join(wrappedLines, "\n")
}

// setupStoreFlags adds the flags every store command shares
func setupStoreFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.String(configs.KeyEngine, string(configs.DefaultEngine), WrapString("storage engine (leveldb, pebble, badger, bolt, redis)"))
	flags.String(configs.KeyDir, "data", WrapString("directory of the store, used as the key namespace for redis"))
	flags.Bool(configs.KeyMemory, false, WrapString("open a store that keeps nothing once the command exits"))
	flags.Bool(configs.KeySync, false, WrapString("sync batch writes to disk before returning"))
	flags.String(configs.KeyRedisAddr, "localhost:6379", WrapString("address of the redis server for the redis engine"))
	flags.String(configs.KeyLogLevel, "warn", WrapString("log level (trace, debug, info, warn, error)"))
	flags.String(configs.KeyLogFormat, "console", WrapString("log format (console, json)"))
}

// bindCommandFlags binds the flags of cmd and its parents to v
func bindCommandFlags(v *viper.Viper, cmd *cobra.Command) error {
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return err
	}
	return v.BindPFlags(cmd.InheritedFlags())
}
