package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// NewCompetitorsCommand creates the competitors command group.
func NewCompetitorsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "competitors",
		Short: "Manage the roster new pools copy their competitors from",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List the roster",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withServices(cmd, func(ctx context.Context, s *services) error {
				roster, err := s.competitors.List(ctx)
				if err != nil {
					return err
				}
				return rootOpts.output(cmd).Success(roster, func(w io.Writer) {
					tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
					fmt.Fprintln(tw, "ID\tNAME")
					for _, c := range roster {
						fmt.Fprintf(tw, "%s\t%s\n", c.ID, c.Name)
					}
					tw.Flush()
				})
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "add <name>...",
		Short: "Add competitors to the roster",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withServices(cmd, func(ctx context.Context, s *services) error {
				ids := make([]uuid.UUID, 0, len(args))
				for _, name := range args {
					c, err := s.competitors.Add(ctx, name)
					if err != nil {
						return err
					}
					ids = append(ids, c.ID)
				}
				return rootOpts.output(cmd).Success(ids, func(w io.Writer) {
					fmt.Fprintf(w, "Added %d competitors\n", len(ids))
				})
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "remove <competitor-id>",
		Short: "Remove a competitor from the roster",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return rootOpts.withServices(cmd, func(ctx context.Context, s *services) error {
				if err := s.competitors.Remove(ctx, id); err != nil {
					return err
				}
				return rootOpts.output(cmd).Success(map[string]uuid.UUID{"id": id}, func(w io.Writer) {
					fmt.Fprintf(w, "Removed competitor %s\n", id)
				})
			})
		},
	})

	return cmd
}
