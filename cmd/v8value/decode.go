package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wippyai/v8value/codec"
	"github.com/wippyai/v8value/convert"
	"github.com/wippyai/v8value/value"
)

func newDecodeCmd(a *app) *cobra.Command {
	var in, out string

	cmd := &cobra.Command{
		Use:   "decode [file]",
		Short: "Decode serialized data and print it",
		Long: `Decode a serialized value and print it as a debug dump, JSON or CBOR.

Reads stdin when no file is given.

Example:
  v8value decode record.bin
  echo ff0f22026869 | v8value decode --in hex --out json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if in == "" {
				in = a.cfg.Decode.Input
			}
			if out == "" {
				out = a.cfg.Decode.Output
			}

			g, err := a.decodeInput(cmd, args, in)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			switch out {
			case "dump":
				return value.Dump(w, g)
			case "json":
				data, err := convert.ToJSON(g)
				if err != nil {
					return fmt.Errorf("convert to json: %w", err)
				}
				_, err = fmt.Fprintf(w, "%s\n", data)
				return err
			case "cbor":
				data, err := convert.ToCBOR(g)
				if err != nil {
					return fmt.Errorf("convert to cbor: %w", err)
				}
				_, err = w.Write(data)
				return err
			}
			return fmt.Errorf("unknown output format %q", out)
		},
	}

	cmd.Flags().StringVar(&in, "in", "", "input encoding: raw, hex or base64")
	cmd.Flags().StringVar(&out, "out", "", "output: dump, json or cbor")
	return cmd
}

// decodeInput reads, unwraps and deserializes the command input.
func (a *app) decodeInput(cmd *cobra.Command, args []string, format string) (*value.Graph, error) {
	data, err := readInput(args, cmd.InOrStdin())
	if err != nil {
		return nil, err
	}
	wire, err := unwrapWire(data, format)
	if err != nil {
		return nil, err
	}

	g, err := codec.NewDeserializer(a.options()).Deserialize(wire)
	if err != nil {
		return nil, fmt.Errorf("deserialize: %w", err)
	}
	a.log.Debug("decoded input",
		zap.Int("bytes", len(wire)),
		zap.Int("objects", g.Reachable()))
	return g, nil
}
