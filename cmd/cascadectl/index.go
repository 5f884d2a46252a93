package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newIndexCmd(connect connectFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Manage the blue/green index pair",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "active",
			Short: "Print the index searches run against",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				ctx, b, done, err := connect(cmd)
				if err != nil {
					return err
				}
				defer done()

				name, err := b.ActiveIndex(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), name)
				return nil
			},
		},
		&cobra.Command{
			Use:   "inactive",
			Short: "Print the standby index",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				ctx, b, done, err := connect(cmd)
				if err != nil {
					return err
				}
				defer done()

				name, err := b.InactiveIndex(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), name)
				return nil
			},
		},
		&cobra.Command{
			Use:   "toggle",
			Short: "Make the standby index active",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				ctx, b, done, err := connect(cmd)
				if err != nil {
					return err
				}
				defer done()

				name, err := b.ToggleIndex(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "active index is now %s\n", name)
				return nil
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Show both indices of the pair",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				ctx, b, done, err := connect(cmd)
				if err != nil {
					return err
				}
				defer done()

				statuses, err := b.IndexStatus(ctx)
				if err != nil {
					return err
				}
				t := newTable(cmd.OutOrStdout(), "name", "active", "exists")
				for _, s := range statuses {
					t.add(s.Name, yesNo(s.Active), yesNo(s.Exists))
				}
				return t.render()
			},
		},
		&cobra.Command{
			Use:   "drop <name>",
			Short: "Delete the standby index",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx, b, done, err := connect(cmd)
				if err != nil {
					return err
				}
				defer done()

				if err := b.DropIndex(ctx, args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "dropped %s\n", args[0])
				return nil
			},
		},
	)
	return cmd
}
