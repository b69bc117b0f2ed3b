package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/zhigui-projects/go-quizledger/access"
	"github.com/zhigui-projects/go-quizledger/common/crypto"
	"github.com/zhigui-projects/go-quizledger/ledger"
	"github.com/zhigui-projects/go-quizledger/quiz"
	"github.com/zhigui-projects/go-quizledger/rpc"
)

// parseEndTime accepts RFC3339, unix seconds or +duration relative to now.
func parseEndTime(s string, now time.Time) (time.Time, error) {
	if strings.HasPrefix(s, "+") {
		d, err := time.ParseDuration(s[1:])
		if err != nil {
			return time.Time{}, errors.Errorf("invalid end time [%s]", s)
		}
		return now.Add(d), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	secs, err := parseUint("end time", s)
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(int64(secs), 0), nil
}

// answerHash takes a 0x prefixed commitment as is and hashes anything else.
func answerHash(s string) crypto.Hash {
	if h, err := crypto.ParseHash(s); err == nil && strings.HasPrefix(s, "0x") {
		return h
	}
	return quiz.HashAnswer(s)
}

func setPoolCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "set-pool <pool-id> <end-time>",
		Short: "Set a pool end time (operator only).",
		Long:  `Set a pool end time. The end time is RFC3339, unix seconds or +duration from the node's clock.`,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			poolID, err := parseUint("pool id", args[0])
			if err != nil {
				return err
			}
			return o.run(true, func(ctx context.Context, c *rpc.Client) error {
				info, err := c.Info(ctx)
				if err != nil {
					return err
				}
				end, err := parseEndTime(args[1], time.Unix(info.Now, 0))
				if err != nil {
					return err
				}
				resp, err := c.SetPoolEndTime(ctx, poolID, end)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), resp)
			})
		},
	}
}

func poolCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "pool <pool-id>",
		Short: "Show a pool end time.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			poolID, err := parseUint("pool id", args[0])
			if err != nil {
				return err
			}
			return o.run(false, func(ctx context.Context, c *rpc.Client) error {
				end, err := c.PoolEndTime(ctx, poolID)
				if err != nil {
					return err
				}
				view := map[string]interface{}{"poolId": poolID, "endTime": nil}
				if !end.IsZero() {
					view["endTime"] = end.Format(time.RFC3339)
				}
				return printJSON(cmd.OutOrStdout(), view)
			})
		},
	}
}

func submitAnswerCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "submit-answer <pool-id> <participant> <answer|0xhash>",
		Short: "Commit a participant's answer (operator only).",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			poolID, err := parseUint("pool id", args[0])
			if err != nil {
				return err
			}
			participant, err := crypto.ParseAddress(args[1])
			if err != nil {
				return err
			}
			return o.run(true, func(ctx context.Context, c *rpc.Client) error {
				resp, err := c.SubmitAnswerHash(ctx, poolID, participant, answerHash(args[2]))
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), resp)
			})
		},
	}
}

func submitBatchCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "submit-batch <pool-id> <participant=answer|0xhash>...",
		Short: "Commit several answers at once, all or nothing (operator only).",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			poolID, err := parseUint("pool id", args[0])
			if err != nil {
				return err
			}
			participants := make([]crypto.Address, 0, len(args)-1)
			hashes := make([]crypto.Hash, 0, len(args)-1)
			for _, entry := range args[1:] {
				parts := strings.SplitN(entry, "=", 2)
				if len(parts) != 2 {
					return errors.Errorf("invalid entry %q, want participant=answer", entry)
				}
				p, err := crypto.ParseAddress(parts[0])
				if err != nil {
					return err
				}
				participants = append(participants, p)
				hashes = append(hashes, answerHash(parts[1]))
			}
			return o.run(true, func(ctx context.Context, c *rpc.Client) error {
				resp, err := c.SubmitAnswerHashBatch(ctx, poolID, participants, hashes)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), resp)
			})
		},
	}
}

func verifyAnswerCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "verify-answer <pool-id> <participant> <answer|0xhash>",
		Short: "Check a revealed answer against the commitment once the pool ended.",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			poolID, err := parseUint("pool id", args[0])
			if err != nil {
				return err
			}
			participant, err := crypto.ParseAddress(args[1])
			if err != nil {
				return err
			}
			return o.run(false, func(ctx context.Context, c *rpc.Client) error {
				ok, err := c.VerifyAnswerHash(ctx, poolID, participant, answerHash(args[2]))
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), rpc.BoolResponse{Value: ok})
			})
		},
	}
}

func hashAnswerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-answer <answer>",
		Short: "Print the commitment of an answer.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), quiz.HashAnswer(args[0]).Hex())
			return err
		},
	}
}

func roleCmd(o *options, use string, grant bool) *cobra.Command {
	short := "Grant the quiz operator role (admin only)."
	if !grant {
		short = "Revoke the quiz operator role (admin only)."
	}
	return &cobra.Command{
		Use:   use + " <address>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			account, err := crypto.ParseAddress(args[0])
			if err != nil {
				return err
			}
			return o.run(true, func(ctx context.Context, c *rpc.Client) error {
				var resp *rpc.SubmitResponse
				if grant {
					resp, err = c.GrantRole(ctx, access.OperatorRole, account)
				} else {
					resp, err = c.RevokeRole(ctx, access.OperatorRole, account)
				}
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), resp)
			})
		},
	}
}

func infoCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show node time and funds manager configuration.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(false, func(ctx context.Context, c *rpc.Client) error {
				info, err := c.Info(ctx)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), info)
			})
		},
	}
}

func watchCmd(o *options) *cobra.Command {
	var from uint64
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stream ledger events, one JSON object per line.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := o.dial(false)
			if err != nil {
				return err
			}
			defer c.Close()
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return c.Watch(ctx, from, func(lg *ledger.StoredLog) error {
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "%d %s %s %s\n", lg.Index, lg.Time.Format(time.RFC3339), lg.Name, lg.Data)
				return err
			})
		},
	}
	cmd.Flags().Uint64Var(&from, "from", 0, "first journal index")
	return cmd
}
