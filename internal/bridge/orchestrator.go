package bridge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/compose-network/bridge-deployer/internal/bridge/contracts"
	"github.com/compose-network/bridge-deployer/internal/bridge/domain"
	"github.com/compose-network/bridge-deployer/internal/bridge/gateway"
	"github.com/compose-network/bridge-deployer/internal/bridge/handoff"
	"github.com/compose-network/bridge-deployer/internal/bridge/output"
	"github.com/compose-network/bridge-deployer/internal/bridge/storage"
	"github.com/compose-network/bridge-deployer/internal/logger"
)

var ErrInconsistentState = errors.New("saved deployment state is inconsistent with the plan")

/*
Orchestrator deploys the bridge contracts in dependency order:
  - originates the fungible ledger and one ledger per NFT collection
  - originates the quorum from the signer set
  - originates the minter, wired to the quorum and the ledgers
  - proposes the minter as admin of every ledger
  - has the minter accept administration of all ledgers at once

Every confirmed step is handed to the Recorder, and a prior result makes the
deployment continue after the last confirmed step.
*/
type (
	Recorder interface {
		Record(result *domain.DeploymentResult) error
	}

	Orchestrator struct {
		gateway     gateway.Gateway
		code        contracts.Set
		recorder    Recorder
		explorerURL string
		logger      *slog.Logger
	}

	deployment struct {
		plan     Plan
		result   *domain.DeploymentResult
		transfer *handoff.Transfer
	}
)

// NewOrchestrator creates an orchestrator submitting through gw. recorder
// may be nil.
func NewOrchestrator(gw gateway.Gateway, code contracts.Set, recorder Recorder, explorerURL string) *Orchestrator {
	return &Orchestrator{
		gateway:     gw,
		code:        code,
		recorder:    recorder,
		explorerURL: explorerURL,
		logger:      logger.Named("bridge_orchestrator"),
	}
}

// Deploy runs the stages plan still needs and returns the addresses obtained.
// On failure the returned result holds every address confirmed so far.
func (o *Orchestrator) Deploy(ctx context.Context, plan Plan, prior *domain.DeploymentResult) (*domain.DeploymentResult, error) {
	result := prior.Clone()

	if err := plan.Validate(); err != nil {
		return result, fmt.Errorf("invalid deployment plan: %w", err)
	}
	if err := checkPrior(plan, result); err != nil {
		return result, err
	}

	d := &deployment{plan: plan, result: result}
	startStage := ResumeStage(plan, result)

	o.logger.
		With("start_stage", startStage, "tokens", len(plan.Tokens), "nfts", len(plan.Nfts)).
		Info("starting bridge deployment")

	for i := StageIndex(startStage); i < len(StageOrder); i++ {
		stage := StageOrder[i]
		if stage == StageCompleted {
			continue
		}

		o.logger.With("stage", stage).Info("executing stage")

		if err := o.executeStage(ctx, d, stage); err != nil {
			o.logger.With("stage", stage, "err", err.Error()).Error("stage failed")
			return result, fmt.Errorf("stage %s failed: %w", stage, err)
		}

		o.logger.With("stage", stage).Info("stage completed")
	}

	o.logger.
		With("fungible_ledger", result.FungibleLedger, "quorum", result.Quorum, "minter", result.Minter).
		Info("bridge deployment completed")

	return result, nil
}

func (o *Orchestrator) executeStage(ctx context.Context, d *deployment, stage Stage) error {
	switch stage {
	case StageOriginateLedgers:
		return o.stageOriginateLedgers(ctx, d)
	case StageOriginateQuorum:
		return o.stageOriginateQuorum(ctx, d)
	case StageOriginateMinter:
		return o.stageOriginateMinter(ctx, d)
	case StageHandoffAdmin:
		return o.stageHandoffAdmin(ctx, d)
	case StageConfirmAdmin:
		return o.stageConfirmAdmin(ctx, d)
	default:
		return fmt.Errorf("unknown stage: %s", stage)
	}
}

func (o *Orchestrator) stageOriginateLedgers(ctx context.Context, d *deployment) error {
	plan, result := d.plan, d.result

	if result.FungibleLedger == "" {
		doc, err := storage.FungibleLedger(plan.Identity, plan.Tokens, plan.Metadata.FungibleLedger)
		if err != nil {
			return err
		}
		addr, err := o.originate(ctx, domain.FungibleLedgerRole(), contracts.NameFungibleLedger, doc)
		if err != nil {
			return err
		}
		if err := result.RecordFungibleLedger(addr); err != nil {
			return err
		}
		if err := o.record(result); err != nil {
			return err
		}
	} else {
		o.logger.With("address", result.FungibleLedger).Info("fungible ledger already originated, skipping")
	}

	for i, nft := range plan.Nfts {
		key := nft.ForeignKey()
		if addr, ok := result.NftLedgers[key]; ok {
			o.logger.With("eth_contract", nft.ForeignContract, "address", addr).Info("nft ledger already originated, skipping")
			continue
		}

		doc, err := storage.NftLedger(plan.Identity, nft, plan.Metadata.NftLedger)
		if err != nil {
			return err
		}
		addr, err := o.originate(ctx, domain.NftLedgerRole(i), contracts.NameNftLedger, doc)
		if err != nil {
			return err
		}
		if err := result.RecordNftLedger(key, addr); err != nil {
			return err
		}
		if err := o.record(result); err != nil {
			return err
		}
	}

	return nil
}

func (o *Orchestrator) stageOriginateQuorum(ctx context.Context, d *deployment) error {
	doc, err := storage.Quorum(d.plan.Identity, d.plan.Signers, d.plan.Metadata.Quorum)
	if err != nil {
		return err
	}

	addr, err := o.originate(ctx, domain.QuorumRole(), contracts.NameQuorum, doc)
	if err != nil {
		return err
	}
	if err := d.result.RecordQuorum(addr); err != nil {
		return err
	}

	return o.record(d.result)
}

func (o *Orchestrator) stageOriginateMinter(ctx context.Context, d *deployment) error {
	plan, result := d.plan, d.result

	doc, err := storage.Minter(storage.MinterParams{
		Administrator:      plan.Identity,
		Quorum:             result.Quorum,
		FungibleLedger:     result.FungibleLedger,
		Tokens:             plan.Tokens,
		Nfts:               plan.Nfts,
		NftLedgers:         result.NftLedgers,
		GovernanceContract: plan.Governance.Contract,
		FeesContract:       plan.Governance.FeesContract,
		Fees:               plan.Governance.Fees,
		Metadata:           plan.Metadata.Minter,
	})
	if err != nil {
		return err
	}

	if doc.Governance.Contract == plan.Identity {
		o.logger.
			With("administrator", plan.Identity).
			Warn("minter administration and governance stay with the deploying identity")
	}

	addr, err := o.originate(ctx, domain.MinterRole(), contracts.NameMinter, doc)
	if err != nil {
		return err
	}
	if err := result.RecordMinter(addr); err != nil {
		return err
	}

	return o.record(result)
}

func (o *Orchestrator) stageHandoffAdmin(ctx context.Context, d *deployment) error {
	transfer, err := o.transfer(d)
	if err != nil {
		return err
	}

	for _, ledger := range d.plan.proposalOrder(d.result) {
		if d.result.HasAdminProposed(ledger) {
			o.logger.With("ledger", ledger).Info("admin already proposed, skipping")
			continue
		}

		if err := transfer.Propose(ctx, ledger); err != nil {
			return err
		}
		if err := d.result.RecordAdminProposed(ledger); err != nil {
			return err
		}
		if err := o.record(d.result); err != nil {
			return err
		}
	}

	return nil
}

func (o *Orchestrator) stageConfirmAdmin(ctx context.Context, d *deployment) error {
	transfer, err := o.transfer(d)
	if err != nil {
		return err
	}

	if err := transfer.Confirm(ctx); err != nil {
		return err
	}
	if err := d.result.RecordAdminConfirmed(); err != nil {
		return err
	}

	return o.record(d.result)
}

// transfer returns the handoff of the deployment, restoring proposals
// confirmed by an earlier run.
func (o *Orchestrator) transfer(d *deployment) (*handoff.Transfer, error) {
	if d.transfer != nil {
		return d.transfer, nil
	}

	transfer, err := handoff.New(o.gateway, d.result.Minter, d.plan.ledgersOf(d.result), handoff.WithEntrypoints(d.plan.Entrypoints))
	if err != nil {
		return nil, fmt.Errorf("failed to prepare admin handoff: %w", err)
	}
	for _, ledger := range d.result.AdminProposed {
		if err := transfer.MarkProposed(ledger); err != nil {
			return nil, err
		}
	}

	d.transfer = transfer
	return transfer, nil
}

func (o *Orchestrator) originate(ctx context.Context, role domain.Role, name contracts.Name, doc any) (domain.Address, error) {
	code, err := o.code.Get(name)
	if err != nil {
		return "", &domain.OriginationError{Role: role, Err: err}
	}

	o.logger.With("role", role, "contract", name).Info("originating contract")

	addr, err := o.gateway.Originate(ctx, code, doc)
	if err != nil {
		return "", &domain.OriginationError{Role: role, Err: err}
	}

	o.logger.
		With("role", role, "address", addr, "explorer", output.ExplorerLink(o.explorerURL, addr)).
		Info("contract originated")

	return addr, nil
}

func (o *Orchestrator) record(result *domain.DeploymentResult) error {
	if o.recorder == nil {
		return nil
	}
	if err := o.recorder.Record(result); err != nil {
		return fmt.Errorf("failed to record deployment progress: %w", err)
	}
	return nil
}

// checkPrior rejects saved results that could not have been produced by
// running plan in stage order.
func checkPrior(plan Plan, result *domain.DeploymentResult) error {
	keys := make(map[string]bool, len(plan.Nfts))
	for _, nft := range plan.Nfts {
		keys[nft.ForeignKey()] = true
	}
	for key := range result.NftLedgers {
		if !keys[key] {
			return fmt.Errorf("%w: nft ledger recorded for unknown collection %s", ErrInconsistentState, key)
		}
	}

	ledgersDone := ledgersOriginated(plan, result)
	switch {
	case len(result.NftLedgers) > 0 && result.FungibleLedger == "":
		return fmt.Errorf("%w: nft ledgers recorded without fungible ledger", ErrInconsistentState)
	case result.Quorum != "" && !ledgersDone:
		return fmt.Errorf("%w: quorum recorded before every ledger", ErrInconsistentState)
	case result.Minter != "" && result.Quorum == "":
		return fmt.Errorf("%w: minter recorded without quorum", ErrInconsistentState)
	case len(result.AdminProposed) > 0 && result.Minter == "":
		return fmt.Errorf("%w: admin proposals recorded without minter", ErrInconsistentState)
	}

	if len(result.AdminProposed) > 0 {
		ledgers := plan.ledgersOf(result)
		for _, proposed := range result.AdminProposed {
			if !slices.Contains(ledgers, proposed) {
				return fmt.Errorf("%w: admin proposal for unknown ledger %s", ErrInconsistentState, proposed)
			}
		}
		if result.AdminConfirmed && len(result.AdminProposed) != len(ledgers) {
			return fmt.Errorf("%w: handoff confirmed with pending proposals", ErrInconsistentState)
		}
	} else if result.AdminConfirmed {
		return fmt.Errorf("%w: handoff confirmed without proposals", ErrInconsistentState)
	}

	return nil
}
