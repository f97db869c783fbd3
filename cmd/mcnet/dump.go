package main

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/huoshan017/mcnet/capture"
	"github.com/huoshan017/mcnet/packet"
)

func dumpCmd() *cobra.Command {
	var raw bool
	cmd := &cobra.Command{
		Use:   "dump <capture-file>",
		Short: "Print the packets recorded in a capture file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := loadConfig(); err != nil {
				return err
			}
			r, err := capture.Open(args[0])
			if err != nil {
				return err
			}
			defer r.Close()
			return dump(cmd.OutOrStdout(), r, raw)
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "Print payload bytes instead of decoded packets")
	return cmd
}

func dump(out io.Writer, r *capture.Reader, raw bool) error {
	codec, err := packet.NewCodec(r.Version())
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "# protocol %d, %s records\n", r.Version(), r.Codec().Name())
	var total uint64
	count := 0
	for {
		rec, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		count++
		total += uint64(len(rec.Payload))
		name, ok := codec.Lookup(rec.PacketState(), rec.Dir(), rec.ID)
		if !ok {
			name = "?"
		}
		fmt.Fprintf(out, "%s %-11s %-11s 0x%02x %-28s %8s",
			rec.At().Format("15:04:05.000"), rec.Dir(), rec.PacketState(), rec.ID, name, humanize.Bytes(uint64(len(rec.Payload))))
		switch {
		case raw:
			fmt.Fprintf(out, " % x\n", rec.Payload)
		case !ok:
			fmt.Fprintln(out)
		default:
			p, err := rec.Decode(codec)
			if err != nil {
				fmt.Fprintf(out, " decode error: %v\n", err)
			} else {
				fmt.Fprintf(out, " %+v\n", p)
			}
		}
	}
	fmt.Fprintf(out, "# %d records, %s of payload\n", count, humanize.Bytes(total))
	return nil
}
