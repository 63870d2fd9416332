package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/hliosone/legacyx/internal/domain"
	"github.com/hliosone/legacyx/internal/infra/database/models"
	"github.com/hliosone/legacyx/internal/usecase"
)

// HistoryRepository persists the client-side record of contracts and
// signing sessions in postgres.
type HistoryRepository struct {
	db *gorm.DB
}

func NewHistoryRepository(db *gorm.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

func (r *HistoryRepository) SaveContract(ctx context.Context, contract domain.InheritanceContract, message string) error {
	record := models.ContractRecord{
		Testator:  contract.Testator,
		Inheritor: contract.Inheritor,
		Escrow:    contract.Escrow,
		Message:   message,
	}

	// A contract is created exactly once per escrow address.
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		DoNothing: true,
	}).Create(&record).Error
}

func (r *HistoryRepository) SaveSession(ctx context.Context, session domain.SigningSession, flow string) error {
	record := models.SessionRecord{
		ID:       session.ID,
		Flow:     flow,
		State:    session.State,
		ProofURI: session.ProofURI,
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"state"}),
	}).Create(&record).Error
}

func (r *HistoryRepository) ListContracts(ctx context.Context, address string) ([]domain.InheritanceContract, error) {
	var records []models.ContractRecord
	err := r.db.WithContext(ctx).
		Where("testator = ?", address).
		Or("inheritor = ?", address).
		Order("c_date desc").
		Find(&records).Error
	if err != nil {
		return nil, err
	}

	contracts := make([]domain.InheritanceContract, 0, len(records))
	for _, record := range records {
		contracts = append(contracts, domain.InheritanceContract{
			Testator:  record.Testator,
			Inheritor: record.Inheritor,
			Escrow:    record.Escrow,
		})
	}
	return contracts, nil
}

var _ usecase.HistoryRepository = (*HistoryRepository)(nil)
