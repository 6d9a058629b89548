package bridge

import "github.com/compose-network/bridge-deployer/internal/bridge/domain"

// Stage is one step of a bridge deployment.
type Stage string

const (
	StageOriginateLedgers Stage = "originate_ledgers"
	StageOriginateQuorum  Stage = "originate_quorum"
	StageOriginateMinter  Stage = "originate_minter"
	StageHandoffAdmin     Stage = "handoff_admin"
	StageConfirmAdmin     Stage = "confirm_admin"
	StageCompleted        Stage = "completed"
)

// StageOrder is the only order stages run in. Each stage requires the
// previous one to be complete.
var StageOrder = []Stage{
	StageOriginateLedgers,
	StageOriginateQuorum,
	StageOriginateMinter,
	StageHandoffAdmin,
	StageConfirmAdmin,
	StageCompleted,
}

func (s Stage) String() string {
	return string(s)
}

// StageIndex returns the position of s in StageOrder, or -1.
func StageIndex(s Stage) int {
	for i, stage := range StageOrder {
		if stage == s {
			return i
		}
	}
	return -1
}

// ResumeStage returns the first stage result has not completed for plan.
func ResumeStage(plan Plan, result *domain.DeploymentResult) Stage {
	switch {
	case result == nil || !ledgersOriginated(plan, result):
		return StageOriginateLedgers
	case result.Quorum == "":
		return StageOriginateQuorum
	case result.Minter == "":
		return StageOriginateMinter
	case len(result.AdminProposed) < len(plan.ledgersOf(result)):
		return StageHandoffAdmin
	case !result.AdminConfirmed:
		return StageConfirmAdmin
	default:
		return StageCompleted
	}
}

func ledgersOriginated(plan Plan, result *domain.DeploymentResult) bool {
	if result.FungibleLedger == "" {
		return false
	}
	for _, nft := range plan.Nfts {
		if _, ok := result.NftLedgers[nft.ForeignKey()]; !ok {
			return false
		}
	}
	return true
}
