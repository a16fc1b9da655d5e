package controller

import (
	"net/http"

	"github.com/SpacksD/dulmar1-sub001/internal/entity"
	"github.com/SpacksD/dulmar1-sub001/internal/pkg/serverutils"
	"github.com/SpacksD/dulmar1-sub001/internal/repository"
	"github.com/SpacksD/dulmar1-sub001/internal/service"
	"github.com/SpacksD/dulmar1-sub001/pkg/billing"
	"github.com/SpacksD/dulmar1-sub001/pkg/payment"
	"github.com/SpacksD/dulmar1-sub001/pkg/pricing"
	"github.com/SpacksD/dulmar1-sub001/pkg/promotion"
	"github.com/SpacksD/dulmar1-sub001/pkg/schedule"
)

// ErrorMappings is the sentinel to HTTP status table used by the server's
// error handler.
func ErrorMappings() []serverutils.ErrorMapping {
	status := func(code int, errs ...error) []serverutils.ErrorMapping {
		out := make([]serverutils.ErrorMapping, len(errs))
		for i, err := range errs {
			out[i] = serverutils.ErrorMapping{Err: err, Status: code}
		}
		return out
	}

	var m []serverutils.ErrorMapping
	m = append(m, status(http.StatusBadRequest,
		pricing.ErrInvalidSessionCount,
		pricing.ErrInvalidBasePrice,
		promotion.ErrInvalidPromotion,
		promotion.ErrInvalidDateRange,
		billing.ErrInvalidPeriod,
		payment.ErrInvalidDecision,
		payment.ErrInvalidAmount,
		payment.ErrMissingMethod,
		service.ErrInvalidSchedule,
		service.ErrChildAgeOutOfRange,
		service.ErrServiceInactive,
	)...)
	m = append(m, status(http.StatusUnprocessableEntity,
		service.ErrQuoteOnRequest,
		promotion.ErrInactive,
		promotion.ErrNotStarted,
		promotion.ErrExpired,
		promotion.ErrServiceNotApplicable,
		promotion.ErrChildTooYoung,
		promotion.ErrChildTooOld,
	)...)
	m = append(m, status(http.StatusForbidden,
		payment.ErrNotInvoiceOwner,
	)...)
	m = append(m, status(http.StatusNotFound,
		service.ErrServiceNotFound,
		service.ErrPromotionNotFound,
		service.ErrBookingNotFound,
		service.ErrSubscriptionNotFound,
		service.ErrRunNotFound,
		payment.ErrPaymentNotFound,
		payment.ErrInvoiceNotFound,
		payment.ErrSubscriptionNotFound,
		schedule.ErrSubscriptionNotFound,
		schedule.ErrServiceNotFound,
		schedule.ErrTimeSlotNotFound,
		repository.ErrNotificationNotFound,
	)...)
	m = append(m, status(http.StatusConflict,
		promotion.ErrPromotionExhausted,
		payment.ErrPaymentAlreadyProcessed,
		payment.ErrPaymentAlreadyPending,
		payment.ErrPaymentNotConfirmed,
		payment.ErrInvoiceNotPayable,
		schedule.ErrSubscriptionCancelled,
		service.ErrBookingNotWithdrawable,
		service.ErrAlreadyCancelled,
		service.ErrRunInProgress,
		service.ErrPromoCodeTaken,
		entity.ErrInvalidTransition,
	)...)
	return m
}
