package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rawbytedev/flkv"
	"github.com/rawbytedev/flkv/configs"
	"github.com/spf13/cobra"
)

func (a *app) putCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "put [key] [value]",
		Short: "Sets the value for a key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.db.Put(cmd.Context(), []byte(args[0]), []byte(args[1])); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "put successfully")
			return nil
		},
	}
}

func (a *app) getCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get [key]",
		Short: "Gets the value for a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := a.db.Get(cmd.Context(), []byte(args[0]))
			if err != nil {
				return fmt.Errorf("get %q: %w", args[0], err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(value))
			return nil
		},
	}
}

func (a *app) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete [key]",
		Aliases: []string{"del"},
		Short:   "Deletes a key",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.db.Delete(cmd.Context(), []byte(args[0])); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "deleted successfully")
			return nil
		},
	}
}

func (a *app) scanCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "scan [prefix]",
		Short: "Lists the keys starting with prefix in ascending order",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var prefix []byte
			if len(args) == 1 {
				prefix = []byte(args[0])
			}
			it := a.db.Scan(prefix)
			defer it.Release()
			out := cmd.OutOrStdout()
			for n := 0; it.Next(); n++ {
				if limit > 0 && n >= limit {
					break
				}
				fmt.Fprintf(out, "%s\t%s\n", it.Key(), it.Value())
			}
			return it.Error()
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, WrapString("stop after this many entries, 0 lists everything"))
	return cmd
}

func (a *app) batchCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Applies the operations read from stdin or --file atomically",
		Long: `Applies a list of operations atomically, one per line:

  put <key> <value>
  delete <key>

Empty lines and lines starting with # are ignored.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in := cmd.InOrStdin()
			if file != "" {
				f, err := os.Open(file)
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}
			batch, err := parseBatch(in)
			if err != nil {
				return err
			}
			if err := a.db.Write(cmd.Context(), batch, a.v.GetBool(configs.KeySync)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "applied %d operations\n", batch.Len())
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", WrapString("read operations from this file instead of stdin"))
	return cmd
}

// parseBatch reads put and delete lines into a batch.
func parseBatch(r io.Reader) (*flkv.Batch, error) {
	batch := flkv.NewBatch()
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), flkv.IdealBatchSize*16)
	for line := 1; scanner.Scan(); line++ {
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		op, rest, _ := strings.Cut(text, " ")
		rest = strings.TrimLeft(rest, " ")
		var err error
		switch strings.ToLower(op) {
		case "put":
			key, value, ok := strings.Cut(rest, " ")
			if !ok {
				return nil, fmt.Errorf("line %d: put needs a key and a value", line)
			}
			err = batch.Put([]byte(key), []byte(value))
		case "delete", "del":
			if rest == "" || strings.Contains(rest, " ") {
				return nil, fmt.Errorf("line %d: delete needs exactly one key", line)
			}
			err = batch.Delete([]byte(rest))
		default:
			return nil, fmt.Errorf("line %d: unknown operation %q", line, op)
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
	}
	return batch, scanner.Err()
}

func (a *app) flushCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "flush",
		Short: "Forces buffered writes to stable storage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.db.Flush(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "flushed successfully")
			return nil
		},
	}
}
