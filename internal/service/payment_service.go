package service

import (
	"context"

	"github.com/SpacksD/dulmar1-sub001/internal/dto"
	"github.com/SpacksD/dulmar1-sub001/internal/pkg/logger"
	"github.com/SpacksD/dulmar1-sub001/pkg/payment"

	"github.com/google/uuid"
)

type IPaymentService interface {
	SubmitPayment(ctx context.Context, userId uuid.UUID, req *dto.SubmitPaymentRequest) (*dto.PaymentResponse, error)
	ConfirmPayment(ctx context.Context, paymentId, adminId uuid.UUID, req *dto.ReviewPaymentRequest) (*payment.Outcome, error)
	RejectPayment(ctx context.Context, paymentId, adminId uuid.UUID, req *dto.ReviewPaymentRequest) (*payment.Outcome, error)
	ResumeCascade(ctx context.Context, paymentId uuid.UUID) (*payment.Outcome, error)
}

type paymentService struct {
	reconciler *payment.Reconciler
	logger     logger.ILogger
}

func NewPaymentService(reconciler *payment.Reconciler, logger logger.ILogger) IPaymentService {
	return &paymentService{
		reconciler: reconciler,
		logger:     logger,
	}
}

func (s *paymentService) SubmitPayment(ctx context.Context, userId uuid.UUID, req *dto.SubmitPaymentRequest) (*dto.PaymentResponse, error) {
	record, err := s.reconciler.Submit(ctx, payment.SubmitInput{
		InvoiceId:        req.InvoiceId,
		UserId:           userId,
		Amount:           req.Amount,
		PaymentMethod:    req.PaymentMethod,
		PaymentReference: req.PaymentReference,
		ProofPath:        req.ProofPath,
	})
	if err != nil {
		return nil, err
	}

	return &dto.PaymentResponse{
		Id:               record.Id,
		InvoiceId:        record.InvoiceId,
		Amount:           record.Amount,
		PaymentMethod:    record.PaymentMethod,
		PaymentReference: record.PaymentReference,
		ProofPath:        record.ProofPath,
		Status:           string(record.Status),
		CreatedAt:        record.CreatedAt,
	}, nil
}

func (s *paymentService) ConfirmPayment(ctx context.Context, paymentId, adminId uuid.UUID, req *dto.ReviewPaymentRequest) (*payment.Outcome, error) {
	outcome, err := s.reconciler.Reconcile(ctx, paymentId, payment.DecisionConfirm, req.AdminNotes, adminId)
	if err != nil {
		return nil, err
	}
	s.logIncomplete(outcome)
	return outcome, nil
}

func (s *paymentService) RejectPayment(ctx context.Context, paymentId, adminId uuid.UUID, req *dto.ReviewPaymentRequest) (*payment.Outcome, error) {
	return s.reconciler.Reconcile(ctx, paymentId, payment.DecisionReject, req.AdminNotes, adminId)
}

func (s *paymentService) ResumeCascade(ctx context.Context, paymentId uuid.UUID) (*payment.Outcome, error) {
	outcome, err := s.reconciler.ResumeCascade(ctx, paymentId)
	if err != nil {
		return nil, err
	}
	s.logIncomplete(outcome)
	return outcome, nil
}

func (s *paymentService) logIncomplete(outcome *payment.Outcome) {
	if outcome.Complete() {
		return
	}
	s.logger.Warn("PAYMENT", "Confirmation cascade incomplete, resume required", map[string]interface{}{
		"paymentId": outcome.PaymentId.String(),
		"warnings":  outcome.Warnings,
	})
}
