package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/huoshan017/mcnet/packet"
)

func packetsCmd() *cobra.Command {
	var version int
	cmd := &cobra.Command{
		Use:   "packets",
		Short: "List the packet tables of a protocol version",
		RunE: func(cmd *cobra.Command, args []string) error {
			codec, err := packet.NewCodec(packet.Version(version))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, state := range []packet.State{packet.StateHandshaking, packet.StateStatus, packet.StateLogin, packet.StatePlay} {
				for _, dir := range []packet.Direction{packet.Serverbound, packet.Clientbound} {
					for _, name := range codec.Names(state, dir) {
						id, _ := codec.ID(state, dir, name)
						fmt.Fprintf(out, "%-11s %-11s 0x%02x %s\n", state, dir, id, name)
					}
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&version, "protocol", int(packet.DefaultVersion), "Protocol version (736 or 754)")
	return cmd
}
