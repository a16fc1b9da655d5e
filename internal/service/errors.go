package service

import "errors"

var (
	ErrServiceNotFound        = errors.New("service not found")
	ErrServiceInactive        = errors.New("service is not available for booking")
	ErrQuoteOnRequest         = errors.New("service is priced on request and cannot be booked online")
	ErrChildAgeOutOfRange     = errors.New("child age is outside the service's age range")
	ErrInvalidSchedule        = errors.New("weekly schedule is invalid")
	ErrPromotionNotFound      = errors.New("promotion code not found")
	ErrBookingNotFound        = errors.New("booking not found")
	ErrBookingNotWithdrawable = errors.New("only pending unpaid bookings can be withdrawn")
	ErrSubscriptionNotFound   = errors.New("subscription not found")
	ErrAlreadyCancelled       = errors.New("subscription is already cancelled")
	ErrRunInProgress          = errors.New("a billing run for this period is already in progress")
	ErrRunNotFound            = errors.New("no billing run recorded for this period")
)

var ErrPromoCodeTaken = errors.New("promo code is already in use")
