package mapper

import (
	"github.com/SpacksD/dulmar1-sub001/internal/entity"
	"github.com/SpacksD/dulmar1-sub001/internal/model"
)

type BookingMapper struct{}

func NewBookingMapper() *BookingMapper {
	return &BookingMapper{}
}

func (m *BookingMapper) ToEntity(b *model.Booking) *entity.Booking {
	if b == nil {
		return nil
	}
	return &entity.Booking{
		Id:             b.Id,
		UserId:         b.UserId,
		ServiceId:      b.ServiceId,
		SubscriptionId: b.SubscriptionId,
		PromotionId:    b.PromotionId,
		ChildName:      b.ChildName,
		ChildAge:       b.ChildAge,
		OriginalPrice:  b.OriginalPrice,
		DiscountAmount: b.DiscountAmount,
		FinalPrice:     b.FinalPrice,
		TotalSessions:  b.TotalSessions,
		Status:         entity.BookingStatus(b.Status),
		PaymentStatus:  entity.BookingPaymentStatus(b.PaymentStatus),
		Notes:          b.Notes,
		CreatedAt:      b.CreatedAt,
		UpdatedAt:      b.UpdatedAt,
	}
}

func (m *BookingMapper) ToModel(b *entity.Booking) *model.Booking {
	if b == nil {
		return nil
	}
	return &model.Booking{
		Id:             b.Id,
		UserId:         b.UserId,
		ServiceId:      b.ServiceId,
		SubscriptionId: b.SubscriptionId,
		PromotionId:    b.PromotionId,
		ChildName:      b.ChildName,
		ChildAge:       b.ChildAge,
		OriginalPrice:  b.OriginalPrice,
		DiscountAmount: b.DiscountAmount,
		FinalPrice:     b.FinalPrice,
		TotalSessions:  b.TotalSessions,
		Status:         string(b.Status),
		PaymentStatus:  string(b.PaymentStatus),
		Notes:          b.Notes,
		CreatedAt:      b.CreatedAt,
		UpdatedAt:      b.UpdatedAt,
	}
}
