/*
Copyright Zhigui.com. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"fmt"
	"io/ioutil"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/zhigui-projects/go-quizledger/common/crypto"
	"github.com/zhigui-projects/go-quizledger/common/log"
)

var logger = log.GetLogger("module", "main")

// The main command describes the service and
// defaults to printing the help message.
var mainCmd = &cobra.Command{Use: "quizledger-server"}

var keyOut string

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate a secp256k1 key file.",
	Long:  `Generate a private key, write it hex encoded to the output file and print its address.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) != 0 {
			return fmt.Errorf("trailing args detected")
		}
		cmd.SilenceUsage = true
		return keygen(keyOut)
	},
}

func keygen(path string) error {
	if _, err := os.Stat(path); err == nil {
		return errors.Errorf("refusing to overwrite existing key file %s", path)
	}
	key, err := crypto.GenerateKey()
	if err != nil {
		return err
	}
	if err := ioutil.WriteFile(path, []byte(crypto.PrivateKeyHex(key)+"\n"), 0600); err != nil {
		return errors.Wrapf(err, "error writing key file %s", path)
	}
	fmt.Println(crypto.PubkeyToAddress(key.PubKey()).Hex())
	return nil
}

func main() {
	keygenCmd.Flags().StringVarP(&keyOut, "out", "o", "admin.key", "key file to write")
	mainCmd.AddCommand(startCmd())
	mainCmd.AddCommand(keygenCmd)
	// On failure Cobra prints the usage message and error string, so we only
	// need to exit with a non-0 status
	if mainCmd.Execute() != nil {
		os.Exit(1)
	}
}
