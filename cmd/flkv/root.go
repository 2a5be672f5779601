package main

import (
	"errors"
	"fmt"

	"github.com/rawbytedev/flkv"
	"github.com/rawbytedev/flkv/configs"
	flog "github.com/rawbytedev/flkv/log"
	"github.com/rawbytedev/flkv/store"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	Version = "0.3.0"
)

// app is the state shared by the commands of one invocation.
type app struct {
	v  *viper.Viper
	db flkv.Core
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}
	configs.InitEnv(a.v)

	rootCmd := &cobra.Command{
		Use:   "flkv",
		Short: "embedded key-value store",
		Long: fmt.Sprintf(`flkv (v%s)

An embedded key-value store with a C interface, backed by
leveldb, pebble, badger, bolt or redis.`, Version),
		SilenceUsage: true,
	}
	setupStoreFlags(rootCmd)

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version number of flkv",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "flkv v%s\n", Version)
		},
	}

	storeCmds := []*cobra.Command{
		a.putCmd(),
		a.getCmd(),
		a.deleteCmd(),
		a.scanCmd(),
		a.batchCmd(),
		a.flushCmd(),
		a.perfCmd(),
	}
	for _, c := range storeCmds {
		c.RunE = a.withStore(c.RunE)
		rootCmd.AddCommand(c)
	}
	rootCmd.AddCommand(versionCmd)
	return rootCmd
}

// open reads the configuration and opens the store
func (a *app) open(cmd *cobra.Command, _ []string) error {
	if err := bindCommandFlags(a.v, cmd); err != nil {
		return err
	}
	logOpts, err := configs.LogOptionsFromViper(a.v)
	if err != nil {
		return err
	}
	flog.Init(logOpts)

	cfg, err := configs.FromViper(a.v)
	if err != nil {
		return err
	}
	flog.CLI.Debug().Str("engine", string(cfg.Engine)).Str("dir", cfg.Defaults().Dir).Msg("opening store")
	a.db, err = store.Open(cmd.Context(), cfg)
	return err
}

// withStore opens the store before run and closes it afterwards, also when run fails
func (a *app) withStore(run func(cmd *cobra.Command, args []string) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if err := a.open(cmd, args); err != nil {
			return err
		}
		err := run(cmd, args)
		if cerr := a.db.Close(); cerr != nil {
			err = errors.Join(err, cerr)
		}
		a.db = nil
		return err
	}
}
