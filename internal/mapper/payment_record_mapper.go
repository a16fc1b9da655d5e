package mapper

import (
	"github.com/SpacksD/dulmar1-sub001/internal/entity"
	"github.com/SpacksD/dulmar1-sub001/internal/model"
)

type PaymentRecordMapper struct{}

func NewPaymentRecordMapper() *PaymentRecordMapper {
	return &PaymentRecordMapper{}
}

func (m *PaymentRecordMapper) ToEntity(p *model.PaymentRecord) *entity.PaymentRecord {
	if p == nil {
		return nil
	}
	return &entity.PaymentRecord{
		Id:               p.Id,
		InvoiceId:        p.InvoiceId,
		UserId:           p.UserId,
		Amount:           p.Amount,
		PaymentMethod:    p.PaymentMethod,
		PaymentReference: p.PaymentReference,
		ProofPath:        p.ProofPath,
		Status:           entity.PaymentRecordStatus(p.Status),
		AdminNotes:       p.AdminNotes,
		ConfirmedBy:      p.ConfirmedBy,
		ConfirmedAt:      p.ConfirmedAt,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

func (m *PaymentRecordMapper) ToModel(p *entity.PaymentRecord) *model.PaymentRecord {
	if p == nil {
		return nil
	}
	return &model.PaymentRecord{
		Id:               p.Id,
		InvoiceId:        p.InvoiceId,
		UserId:           p.UserId,
		Amount:           p.Amount,
		PaymentMethod:    p.PaymentMethod,
		PaymentReference: p.PaymentReference,
		ProofPath:        p.ProofPath,
		Status:           string(p.Status),
		AdminNotes:       p.AdminNotes,
		ConfirmedBy:      p.ConfirmedBy,
		ConfirmedAt:      p.ConfirmedAt,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}
