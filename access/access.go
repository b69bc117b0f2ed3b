/*
Copyright Zhigui.com. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package access gates service entry points by caller identity. A Control
// keeps owner, role membership and initialization state of one service in
// the ledger under that service's namespace.
package access

import (
	"strings"

	"github.com/zhigui-projects/go-quizledger/api"
	"github.com/zhigui-projects/go-quizledger/common/crypto"
	"github.com/zhigui-projects/go-quizledger/ledger"
)

// Role is a 32-byte role identifier.
type Role = crypto.Hash

var (
	// DefaultAdminRole administers every other role.
	DefaultAdminRole Role
	OperatorRole     = crypto.Keccak256([]byte("OPERATOR_ROLE"))
)

// InitializedVersion is the only initializer version services have.
const InitializedVersion uint64 = 1

var (
	ErrNotOwner           = api.AuthorizationError("Ownable: caller is not the owner")
	ErrZeroOwner          = api.ValidationError("Ownable: new owner is the zero address")
	ErrAlreadyInitialized = api.StateConflictError("Initializable: contract is already initialized")
	ErrRenounceForSelf    = api.AuthorizationError("AccessControl: can only renounce roles for self")
)

type Control struct {
	namespace string
}

func New(namespace string) *Control {
	return &Control{namespace: namespace}
}

func (c *Control) key(parts ...[]byte) []byte {
	return ledger.Key(c.namespace, parts...)
}

func (c *Control) initKey() []byte  { return c.key([]byte("acl/init")) }
func (c *Control) ownerKey() []byte { return c.key([]byte("acl/owner")) }
func (c *Control) roleKey(role Role, account crypto.Address) []byte {
	return c.key([]byte("acl/role/"), role.Bytes(), account.Bytes())
}

// Initialized reports whether Initialize already ran.
func (c *Control) Initialized(tx *ledger.Tx) (bool, error) {
	return tx.Has(c.initKey())
}

// Initialize moves the service from Uninitialized to Initialized. It fails
// on every call after the first.
func (c *Control) Initialize(tx *ledger.Tx) error {
	done, err := c.Initialized(tx)
	if err != nil {
		return err
	}
	if done {
		return ErrAlreadyInitialized
	}
	if err := tx.Put(c.initKey(), ledger.Uint64Bytes(InitializedVersion)); err != nil {
		return err
	}
	tx.Emit(Initialized{Version: InitializedVersion})
	return nil
}

// Owner returns the administrator, zero before initialization or after
// renouncement.
func (c *Control) Owner(tx *ledger.Tx) (crypto.Address, error) {
	return tx.GetAddress(c.ownerKey())
}

func (c *Control) RequireOwner(tx *ledger.Tx) error {
	owner, err := c.Owner(tx)
	if err != nil {
		return err
	}
	if owner.IsZero() || owner != tx.Caller() {
		return ErrNotOwner
	}
	return nil
}

// SetOwner installs newOwner without any caller check.
func (c *Control) SetOwner(tx *ledger.Tx, newOwner crypto.Address) error {
	prev, err := c.Owner(tx)
	if err != nil {
		return err
	}
	if newOwner.IsZero() {
		err = tx.Delete(c.ownerKey())
	} else {
		err = tx.PutAddress(c.ownerKey(), newOwner)
	}
	if err != nil {
		return err
	}
	tx.Emit(OwnershipTransferred{PreviousOwner: prev, NewOwner: newOwner})
	return nil
}

func (c *Control) TransferOwnership(tx *ledger.Tx, newOwner crypto.Address) error {
	if err := c.RequireOwner(tx); err != nil {
		return err
	}
	if newOwner.IsZero() {
		return ErrZeroOwner
	}
	return c.SetOwner(tx, newOwner)
}

// RenounceOwnership leaves the service without an owner. Owner only
// entry points are unusable afterwards.
func (c *Control) RenounceOwnership(tx *ledger.Tx) error {
	if err := c.RequireOwner(tx); err != nil {
		return err
	}
	return c.SetOwner(tx, crypto.ZeroAddress)
}

func (c *Control) HasRole(tx *ledger.Tx, role Role, account crypto.Address) (bool, error) {
	return tx.Has(c.roleKey(role, account))
}

func missingRole(account crypto.Address, role Role) error {
	return api.AuthorizationError("AccessControl: account %s is missing role %s",
		strings.ToLower(account.Hex()), role.Hex())
}

// RequireRole fails unless the caller holds role.
func (c *Control) RequireRole(tx *ledger.Tx, role Role) error {
	ok, err := c.HasRole(tx, role, tx.Caller())
	if err != nil {
		return err
	}
	if !ok {
		return missingRole(tx.Caller(), role)
	}
	return nil
}

// RoleAdmin is the role allowed to grant and revoke role.
func (c *Control) RoleAdmin(role Role) Role {
	return DefaultAdminRole
}

// SetupRole grants role without checking the caller. Initializers use it.
func (c *Control) SetupRole(tx *ledger.Tx, role Role, account crypto.Address) error {
	has, err := c.HasRole(tx, role, account)
	if err != nil || has {
		return err
	}
	if err := tx.Put(c.roleKey(role, account), []byte{1}); err != nil {
		return err
	}
	tx.Emit(RoleGranted{Role: role, Account: account, Sender: tx.Caller()})
	return nil
}

func (c *Control) GrantRole(tx *ledger.Tx, role Role, account crypto.Address) error {
	if err := c.RequireRole(tx, c.RoleAdmin(role)); err != nil {
		return err
	}
	return c.SetupRole(tx, role, account)
}

func (c *Control) RevokeRole(tx *ledger.Tx, role Role, account crypto.Address) error {
	if err := c.RequireRole(tx, c.RoleAdmin(role)); err != nil {
		return err
	}
	return c.revoke(tx, role, account)
}

// RenounceRole drops a role the caller holds; account must be the caller.
func (c *Control) RenounceRole(tx *ledger.Tx, role Role, account crypto.Address) error {
	if account != tx.Caller() {
		return ErrRenounceForSelf
	}
	return c.revoke(tx, role, account)
}

func (c *Control) revoke(tx *ledger.Tx, role Role, account crypto.Address) error {
	has, err := c.HasRole(tx, role, account)
	if err != nil || !has {
		return err
	}
	if err := tx.Delete(c.roleKey(role, account)); err != nil {
		return err
	}
	tx.Emit(RoleRevoked{Role: role, Account: account, Sender: tx.Caller()})
	return nil
}

// OnlyRole wraps fn so that it only runs for callers holding role.
func (c *Control) OnlyRole(role Role, fn ledger.TxFunc) ledger.TxFunc {
	return func(tx *ledger.Tx) error {
		if err := c.RequireRole(tx, role); err != nil {
			return err
		}
		return fn(tx)
	}
}

// OnlyOwner wraps fn so that it only runs for the owner.
func (c *Control) OnlyOwner(fn ledger.TxFunc) ledger.TxFunc {
	return func(tx *ledger.Tx) error {
		if err := c.RequireOwner(tx); err != nil {
			return err
		}
		return fn(tx)
	}
}

// Initializer wraps fn so that it runs at most once per service.
func (c *Control) Initializer(fn ledger.TxFunc) ledger.TxFunc {
	return func(tx *ledger.Tx) error {
		if err := c.Initialize(tx); err != nil {
			return err
		}
		return fn(tx)
	}
}
