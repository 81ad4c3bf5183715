package main

import (
	"encoding/hex"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/vango-dev/enginepoll/internal/errors"
	"github.com/vango-dev/enginepoll/pkg/packet"
	"github.com/vango-dev/enginepoll/pkg/payload"
)

func encodeCmd() *cobra.Command {
	var (
		mode     string
		binaries []string
		raw      bool
	)

	cmd := &cobra.Command{
		Use:   "encode [message]...",
		Short: "Encode packets into a polling payload",
		Long: `Encode message packets, followed by any --binary packets, into one
polling payload and print it as hex.

Modes:
  v4         packets joined by 0x1E
  v3         length-prefixed binary frames
  v3-string  "<length>:<packet>" string frames

Examples:
  enginepoll encode hello world
  enginepoll encode --mode=v3 hi --binary=0102
  enginepoll encode --mode=v3-string --raw hi`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEncode(cmd.OutOrStdout(), mode, args, binaries, raw)
		},
	}

	cmd.Flags().StringVarP(&mode, "mode", "m", "v4", "Payload mode: v4, v3 or v3-string")
	cmd.Flags().StringArrayVarP(&binaries, "binary", "b", nil, "Binary packet as hex (repeatable)")
	cmd.Flags().BoolVar(&raw, "raw", false, "Write the payload bytes instead of hex")

	return cmd
}

func runEncode(w io.Writer, modeName string, messages, binaries []string, raw bool) error {
	mode, ok := payload.ParseMode(modeName)
	if !ok {
		return errors.New(errors.UnknownPayloadMode).
			WithField("--mode").
			WithSuggestion("Use one of v4, v3, v3-string").
			Wrap(payload.ErrUnknownMode)
	}

	packets, err := buildPackets(mode, messages, binaries)
	if err != nil {
		return err
	}

	body, err := payload.EncodePackets(mode, packets)
	if err != nil {
		return errors.FromError(err, errors.EncodeFailed)
	}

	if raw {
		_, err = w.Write(body)
		return err
	}
	_, err = fmt.Fprintln(w, hex.EncodeToString(body))
	return err
}

// buildPackets turns command arguments into packets. Binary packets use
// the text convention of the payload's protocol version.
func buildPackets(mode payload.Mode, messages, binaries []string) ([]packet.Packet, error) {
	packets := make([]packet.Packet, 0, len(messages)+len(binaries))
	for _, m := range messages {
		packets = append(packets, packet.Message(m))
	}
	for _, b := range binaries {
		data, err := hex.DecodeString(b)
		if err != nil {
			return nil, errors.New(errors.InvalidBinaryArg).
				WithField("--binary").
				Wrap(err)
		}
		if mode == payload.ModeV4 {
			packets = append(packets, packet.Binary(data))
		} else {
			packets = append(packets, packet.BinaryV3(data))
		}
	}
	if len(packets) == 0 {
		packets = append(packets, packet.Noop())
	}
	return packets, nil
}
