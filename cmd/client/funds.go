package main

import (
	"context"
	"encoding/json"
	"math/big"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/zhigui-projects/go-quizledger/common/crypto"
	"github.com/zhigui-projects/go-quizledger/common/utils"
	"github.com/zhigui-projects/go-quizledger/funds"
	"github.com/zhigui-projects/go-quizledger/rpc"
)

func depositCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "deposit <amount>",
		Short: "Deposit native value into your funds balance.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := utils.ParseAmount(args[0])
			if err != nil {
				return err
			}
			return o.run(true, func(ctx context.Context, c *rpc.Client) error {
				resp, err := c.Deposit(ctx, amount)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), resp)
			})
		},
	}
}

func fundCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "fund <recipient> <amount>",
		Short: "Fund another player's balance.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			recipient, err := crypto.ParseAddress(args[0])
			if err != nil {
				return err
			}
			amount, err := utils.ParseAmount(args[1])
			if err != nil {
				return err
			}
			return o.run(true, func(ctx context.Context, c *rpc.Client) error {
				resp, err := c.FundPlayer(ctx, recipient, amount)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), resp)
			})
		},
	}
}

// signWithdrawalCmd works offline: the participant signs and hands the
// output to the owner.
func signWithdrawalCmd(o *options) *cobra.Command {
	var amount, newBalance, nonce, message string
	cmd := &cobra.Command{
		Use:   "sign-withdrawal",
		Short: "Sign a withdrawal of your own balance for the owner to submit.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			signer, err := o.signer()
			if err != nil {
				return err
			}
			w := funds.Withdrawal{Participant: signer.Address(), Message: message}
			if w.Amount, err = utils.ParseAmount(amount); err != nil {
				return err
			}
			if w.NewBalance, err = utils.ParseAmount(newBalance); err != nil {
				return err
			}
			n, ok := new(big.Int).SetString(nonce, 10)
			if !ok {
				return errors.Errorf("invalid nonce [%s]", nonce)
			}
			w.Nonce = n
			sig, err := rpc.SignWithdrawal(signer, w)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), &rpc.WithdrawArgs{Withdrawal: w, Signature: sig})
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&amount, "amount", "0", "amount withdrawn")
	flags.StringVar(&newBalance, "new-balance", "0", "balance after the withdrawal")
	flags.StringVar(&nonce, "nonce", "0", "withdrawal nonce")
	flags.StringVar(&message, "message", "", "free form message")
	return cmd
}

func readWithdrawal(cmd *cobra.Command, path string) (*rpc.WithdrawArgs, error) {
	raw, err := readFileOrStdin(cmd, path)
	if err != nil {
		return nil, err
	}
	var args rpc.WithdrawArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, errors.Wrap(err, "invalid signed withdrawal")
	}
	return &args, nil
}

func verifyCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "verify <signed-withdrawal.json|->",
		Short: "Check a signed withdrawal without submitting it.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := readWithdrawal(cmd, args[0])
			if err != nil {
				return err
			}
			return o.run(false, func(ctx context.Context, c *rpc.Client) error {
				ok, err := c.Verify(ctx, w.Withdrawal, w.Signature)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), rpc.BoolResponse{Value: ok})
			})
		},
	}
}

func withdrawCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "withdraw <signed-withdrawal.json|->",
		Short: "Submit a participant signed withdrawal (owner only).",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := readWithdrawal(cmd, args[0])
			if err != nil {
				return err
			}
			return o.run(true, func(ctx context.Context, c *rpc.Client) error {
				resp, err := c.Withdraw(ctx, w.Withdrawal, w.Signature)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), resp)
			})
		},
	}
}

type accountView struct {
	Account       crypto.Address `json:"account"`
	Balance       string         `json:"balance"`
	NativeBalance string         `json:"nativeBalance"`
	Nonce         uint64         `json:"nonce"`
}

func balanceCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "balance [address]",
		Short: "Show the funds balance, native balance and nonce of an account.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(len(args) == 0, func(ctx context.Context, c *rpc.Client) error {
				account := c.Address()
				if len(args) == 1 {
					var err error
					if account, err = crypto.ParseAddress(args[0]); err != nil {
						return err
					}
				}
				view := accountView{Account: account}
				bal, err := c.BalanceOf(ctx, account)
				if err != nil {
					return err
				}
				native, err := c.NativeBalance(ctx, account)
				if err != nil {
					return err
				}
				if view.Nonce, err = c.Nonce(ctx, account); err != nil {
					return err
				}
				view.Balance = utils.FormatEther(bal)
				view.NativeBalance = utils.FormatEther(native)
				return printJSON(cmd.OutOrStdout(), view)
			})
		},
	}
}

func fundingCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "funding <funder> <recipient>",
		Short: "Show how much funder has sent to recipient.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			funder, err := crypto.ParseAddress(args[0])
			if err != nil {
				return err
			}
			recipient, err := crypto.ParseAddress(args[1])
			if err != nil {
				return err
			}
			return o.run(false, func(ctx context.Context, c *rpc.Client) error {
				v, err := c.Funding(ctx, funder, recipient)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), map[string]string{"funding": utils.FormatEther(v)})
			})
		},
	}
}

func transferOwnershipCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "transfer-ownership <new-owner>",
		Short: "Hand the funds manager to a new owner.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			newOwner, err := crypto.ParseAddress(args[0])
			if err != nil {
				return err
			}
			return o.run(true, func(ctx context.Context, c *rpc.Client) error {
				resp, err := c.TransferOwnership(ctx, newOwner)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), resp)
			})
		},
	}
}
