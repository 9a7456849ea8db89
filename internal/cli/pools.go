package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/jaektomo/SweepstakeManager/internal/domain"
	"github.com/jaektomo/SweepstakeManager/internal/service"
)

// NewPoolsCommand creates the pools command group.
func NewPoolsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pools",
		Short: "Create, run and inspect pools",
	}

	cmd.AddCommand(newPoolsListCommand(rootOpts))
	cmd.AddCommand(newPoolsShowCommand(rootOpts))
	cmd.AddCommand(newPoolsCreateCommand(rootOpts))
	cmd.AddCommand(newPoolsJoinCommand(rootOpts))
	cmd.AddCommand(newPoolsPaidCommand(rootOpts))
	cmd.AddCommand(newPoolsAssignCommand(rootOpts))
	cmd.AddCommand(newPoolsSettleCommand(rootOpts))
	cmd.AddCommand(newPoolsDeleteCommand(rootOpts))

	return cmd
}

func newPoolsListCommand(rootOpts *RootOptions) *cobra.Command {
	var query string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List pools, newest first",
		Long: `List pools whose name or status contains the query (case-insensitive).

Examples:
  sweepctl pools list
  sweepctl pools list --query cup
  sweepctl pools list -q completed --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withServices(cmd, func(ctx context.Context, s *services) error {
				pools, err := s.pools.ListPools(ctx, query)
				if err != nil {
					return err
				}
				return rootOpts.output(cmd).Success(pools, func(w io.Writer) {
					tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
					fmt.Fprintln(tw, "ID\tNAME\tSTATUS\tPARTICIPANTS\tTOTAL")
					for _, p := range pools {
						fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n",
							p.ID, p.Name, p.Status, len(p.Participants), p.TotalPool().StringFixed(2))
					}
					tw.Flush()
				})
			})
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", "filter by name or status")
	return cmd
}

func newPoolsShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <pool-id>",
		Short: "Show a pool with totals and payout preview",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return rootOpts.withServices(cmd, func(ctx context.Context, s *services) error {
				sum, err := s.pools.Summary(ctx, id)
				if err != nil {
					return err
				}
				return rootOpts.output(cmd).Success(sum, func(w io.Writer) { printSummary(w, sum) })
			})
		},
	}
}

func newPoolsCreateCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		name        string
		fee         string
		shares      []string
		fill        bool
		competitors []string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a pool in setup",
		Long: `Create a pool. Each --share adds the next prize place; without any,
first place takes 60%. --fill adds one more place taking whatever is left.
Without --competitor the current roster is copied. Prize places cannot be
changed once the pool exists.

Examples:
  sweepctl pools create --name "Melbourne Cup" --fee 10 --share 60 --share 30 --share 10
  sweepctl pools create --name "Melbourne Cup" --fee 10 --share 60 --share 25 --fill
  sweepctl pools create --name Derby --fee 5 --competitor Arkle --competitor Shergar`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			entryFee, err := decimal.NewFromString(fee)
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid --fee", err)
			}
			prize := make(domain.PrizeShares, len(shares))
			for i, s := range shares {
				pct, err := decimal.NewFromString(s)
				if err != nil {
					return WrapExitError(ExitCommandError, "invalid --share", err)
				}
				prize[i] = domain.PrizeShare{Place: i + 1, Percentage: pct}
			}
			if fill {
				if len(prize) == 0 {
					prize = domain.DefaultPrizeShares()
				}
				next, ok := domain.NextPrizeShare(prize)
				if !ok {
					return NewExitError(ExitCommandError, "--fill: prize places already take 100%")
				}
				prize = append(prize, next)
			}

			return rootOpts.withServices(cmd, func(ctx context.Context, s *services) error {
				p, err := s.pools.CreatePool(ctx, service.CreatePoolInput{
					Name:        name,
					EntryFee:    entryFee,
					PrizeShares: prize,
					Competitors: competitors,
				})
				if err != nil {
					return err
				}
				return rootOpts.output(cmd).Success(p, func(w io.Writer) {
					fmt.Fprintf(w, "Created pool %s (%s)\n", p.ID, p.Name)
				})
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "pool name (required)")
	_ = cmd.MarkFlagRequired("name")
	cmd.Flags().StringVar(&fee, "fee", "", "entry fee per participant (required)")
	_ = cmd.MarkFlagRequired("fee")
	cmd.Flags().StringArrayVar(&shares, "share", nil, "prize percentage for the next place (repeatable)")
	cmd.Flags().BoolVar(&fill, "fill", false, "add a final place taking the unallocated percentage")
	cmd.Flags().StringArrayVar(&competitors, "competitor", nil, "competitor name (repeatable)")
	return cmd
}

func newPoolsJoinCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "join <pool-id> <name>...",
		Short: "Add participants to a pool in setup",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return rootOpts.withServices(cmd, func(ctx context.Context, s *services) error {
				var p *domain.Pool
				for _, name := range args[1:] {
					if p, err = s.pools.AddParticipant(ctx, id, name); err != nil {
						return err
					}
				}
				return rootOpts.output(cmd).Success(p, func(w io.Writer) {
					fmt.Fprintf(w, "%s now has %d participants\n", p.Name, len(p.Participants))
				})
			})
		},
	}
}

func newPoolsPaidCommand(rootOpts *RootOptions) *cobra.Command {
	var unpaid bool

	cmd := &cobra.Command{
		Use:   "paid <pool-id> <index>",
		Short: "Mark a participant as paid (or unpaid)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			index, err := strconv.Atoi(args[1])
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid participant index", err)
			}
			return rootOpts.withServices(cmd, func(ctx context.Context, s *services) error {
				p, err := s.pools.SetParticipantPaid(ctx, id, index, !unpaid)
				if err != nil {
					return err
				}
				return rootOpts.output(cmd).Success(p, func(w io.Writer) {
					pt := p.Participants[index]
					fmt.Fprintf(w, "%s: paid=%t (%d of %d paid)\n", pt.Name, pt.HasPaid, p.PaidCount(), len(p.Participants))
				})
			})
		},
	}

	cmd.Flags().BoolVar(&unpaid, "unpaid", false, "clear the paid flag instead")
	return cmd
}

func newPoolsAssignCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "assign <pool-id>",
		Short: "Draw a competitor for every participant",
		Args:  cobra.ExactArgs(1),
		RunE: poolAction(rootOpts, func(ctx context.Context, s *services, id uuid.UUID) (*domain.Pool, error) {
			return s.pools.Assign(ctx, id)
		}),
	}
}

func newPoolsSettleCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "settle <pool-id>",
		Short: "Draw the finishing order and pay out prize places",
		Args:  cobra.ExactArgs(1),
		RunE: poolAction(rootOpts, func(ctx context.Context, s *services, id uuid.UUID) (*domain.Pool, error) {
			return s.pools.Settle(ctx, id)
		}),
	}
}

func newPoolsDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <pool-id>",
		Short: "Delete a pool",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return rootOpts.withServices(cmd, func(ctx context.Context, s *services) error {
				if err := s.pools.DeletePool(ctx, id); err != nil {
					return err
				}
				return rootOpts.output(cmd).Success(map[string]uuid.UUID{"id": id}, func(w io.Writer) {
					fmt.Fprintf(w, "Deleted pool %s\n", id)
				})
			})
		},
	}
}

// ── helpers ──────────────────────────────────────────────────────────────────

// poolAction builds a RunE for commands that take a pool id, run one
// operation and print the resulting pool.
func poolAction(
	rootOpts *RootOptions,
	op func(ctx context.Context, s *services, id uuid.UUID) (*domain.Pool, error),
) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return rootOpts.withServices(cmd, func(ctx context.Context, s *services) error {
			p, err := op(ctx, s, id)
			if err != nil {
				return err
			}
			return rootOpts.output(cmd).Success(p, func(w io.Writer) {
				printSummary(w, service.Summarize(p))
			})
		})
	}
}

func parseID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, WrapExitError(ExitCommandError, fmt.Sprintf("invalid id %q", s), err)
	}
	return id, nil
}

func printSummary(w io.Writer, sum *service.PoolSummary) {
	p := sum.Pool
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Pool:\t%s\n", p.ID)
	fmt.Fprintf(tw, "Name:\t%s\n", p.Name)
	fmt.Fprintf(tw, "Status:\t%s\n", p.Status)
	fmt.Fprintf(tw, "Entry fee:\t%s\n", p.EntryFee.StringFixed(2))
	fmt.Fprintf(tw, "Total pool:\t%s\n", sum.TotalPool.StringFixed(2))
	fmt.Fprintf(tw, "Paid:\t%d of %d\n", sum.PaidCount, sum.ParticipantCount)
	fmt.Fprintf(tw, "Unallocated:\t%s%%\n", sum.RemainingPercentage)
	tw.Flush()

	if len(p.Participants) > 0 {
		fmt.Fprintln(w, "\nParticipants:")
		tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		for i, pt := range p.Participants {
			competitor := "-"
			if i < len(p.Pairings) {
				competitor = p.Pairings[i].Competitor
			}
			paid := ""
			if pt.HasPaid {
				paid = "paid"
			}
			fmt.Fprintf(tw, "  %d\t%s\t%s\t%s\n", i, pt.Name, competitor, paid)
		}
		tw.Flush()
	}

	if p.IsCompleted() {
		fmt.Fprintln(w, "\nResults:")
		tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		for _, o := range p.Outcomes {
			fmt.Fprintf(tw, "  %d\t%s\t%s\t%s\n", o.Place, o.Participant, o.Competitor, o.Winnings.StringFixed(2))
		}
		tw.Flush()
		return
	}

	fmt.Fprintln(w, "\nPrize places:")
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, pp := range sum.Payouts {
		fmt.Fprintf(tw, "  %d\t%s%%\t%s\n", pp.Place, pp.Percentage, pp.Amount.StringFixed(2))
	}
	tw.Flush()
}
