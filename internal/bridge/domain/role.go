package domain

import "fmt"

// RoleKind is the kind of contract a Role refers to.
type RoleKind int

const (
	RoleQuorum RoleKind = iota
	RoleFungibleLedger
	RoleNftLedger
	RoleMinter
)

// Role identifies one contract of the deployment. Index is only meaningful
// for NFT ledgers and is the position of the NftSpec in the input list.
type Role struct {
	Kind  RoleKind
	Index int
}

func QuorumRole() Role { return Role{Kind: RoleQuorum} }

func FungibleLedgerRole() Role { return Role{Kind: RoleFungibleLedger} }

func NftLedgerRole(i int) Role { return Role{Kind: RoleNftLedger, Index: i} }

func MinterRole() Role { return Role{Kind: RoleMinter} }

func (r Role) String() string {
	switch r.Kind {
	case RoleQuorum:
		return "quorum"
	case RoleFungibleLedger:
		return "fungible_ledger"
	case RoleNftLedger:
		return fmt.Sprintf("nft_ledger[%d]", r.Index)
	case RoleMinter:
		return "minter"
	default:
		return fmt.Sprintf("role(%d)", int(r.Kind))
	}
}
