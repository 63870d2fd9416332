package usecase

import (
	"context"
	"log/slog"

	"github.com/hliosone/legacyx/internal/domain"
)

// ContractUsecase binds testator, inheritor and escrow into the active
// inheritance contract. It refuses to call the backend without an escrow
// address; success surfaces the backend's message text unchanged.
type ContractUsecase struct {
	backend Backend
	history HistoryRepository
}

func NewContractUsecase(backend Backend, history HistoryRepository) *ContractUsecase {
	return &ContractUsecase{
		backend: backend,
		history: history,
	}
}

// Activate creates the contract record. The escrow address must have been
// produced by a prior provisioning flow; an empty value is an orchestration
// bug and the backend is never called.
func (uc *ContractUsecase) Activate(ctx context.Context, contract domain.InheritanceContract) (string, error) {
	ctx, span := tracer.Start(ctx, "Contract.Usecase.Activate")
	defer span.End()

	if contract.Escrow == "" {
		err := domain.PreconditionViolationError{Reason: "contract activation requires a provisioned escrow address"}
		span.RecordError(err)
		return "", err
	}
	if contract.Testator == "" || contract.Inheritor == "" {
		err := domain.PreconditionViolationError{Reason: "contract activation requires testator and inheritor addresses"}
		span.RecordError(err)
		return "", err
	}

	message, err := uc.backend.ActivateContract(ctx, contract)
	if err != nil {
		span.RecordError(err)
		return "", err
	}

	if uc.history != nil {
		if err := uc.history.SaveContract(ctx, contract, message); err != nil {
			slog.Warn("failed to record activated contract",
				slog.String("escrow", contract.Escrow),
				slog.String("error", err.Error()),
				slog.String("module", "contract"),
			)
		}
	}

	return message, nil
}

// Contracts lists locally recorded contracts involving address, as testator
// or inheritor.
func (uc *ContractUsecase) Contracts(ctx context.Context, address string) ([]domain.InheritanceContract, error) {
	if uc.history == nil {
		return nil, nil
	}
	return uc.history.ListContracts(ctx, address)
}
