package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wippyai/v8value/codec"
	"github.com/wippyai/v8value/convert"
	"github.com/wippyai/v8value/value"
)

func newEncodeCmd(a *app) *cobra.Command {
	var from, out string

	cmd := &cobra.Command{
		Use:   "encode [file]",
		Short: "Serialize JSON or CBOR data",
		Long: `Serialize a JSON or CBOR document in the structured-clone format.

Object keys keep their JSON document order. Reads stdin when no file is given.

Example:
  echo '{"a":[1,2]}' | v8value encode --out hex`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if from == "" {
				from = a.cfg.Encode.From
			}
			if out == "" {
				out = a.cfg.Encode.Output
			}

			data, err := readInput(args, cmd.InOrStdin())
			if err != nil {
				return err
			}

			var g *value.Graph
			switch from {
			case "json":
				g, err = convert.FromJSON(trimJSON(data))
			case "cbor":
				g, err = convert.FromCBOR(data)
			default:
				return fmt.Errorf("unknown source format %q", from)
			}
			if err != nil {
				return fmt.Errorf("parse %s: %w", from, err)
			}

			wire, err := codec.NewSerializer(a.options()).Serialize(g)
			if err != nil {
				return fmt.Errorf("serialize: %w", err)
			}
			a.log.Debug("encoded input", zap.String("from", from), zap.Int("bytes", len(wire)))

			text, err := wrapWire(wire, out)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(text)
			return err
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "input document: json or cbor")
	cmd.Flags().StringVar(&out, "out", "", "output encoding: raw, hex or base64")
	return cmd
}
