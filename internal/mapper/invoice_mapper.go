package mapper

import (
	"github.com/SpacksD/dulmar1-sub001/internal/entity"
	"github.com/SpacksD/dulmar1-sub001/internal/model"
)

type InvoiceMapper struct{}

func NewInvoiceMapper() *InvoiceMapper {
	return &InvoiceMapper{}
}

func (m *InvoiceMapper) ToEntity(i *model.Invoice) *entity.Invoice {
	if i == nil {
		return nil
	}
	var items []entity.InvoiceItem
	if i.Items != nil {
		items = make([]entity.InvoiceItem, 0, len(i.Items))
		for idx := range i.Items {
			items = append(items, *m.ItemToEntity(&i.Items[idx]))
		}
	}
	return &entity.Invoice{
		Id:               i.Id,
		InvoiceNumber:    i.InvoiceNumber,
		SubscriptionId:   i.SubscriptionId,
		UserId:           i.UserId,
		InvoiceType:      entity.InvoiceType(i.InvoiceType),
		BillingMonth:     i.BillingMonth,
		BillingYear:      i.BillingYear,
		DueDate:          i.DueDate,
		Subtotal:         i.Subtotal,
		TaxAmount:        i.TaxAmount,
		TotalAmount:      i.TotalAmount,
		PaymentStatus:    entity.InvoicePaymentStatus(i.PaymentStatus),
		PaidAmount:       i.PaidAmount,
		PaidAt:           i.PaidAt,
		PaymentMethod:    i.PaymentMethod,
		PaymentReference: i.PaymentReference,
		AdminNotes:       i.AdminNotes,
		CreatedAt:        i.CreatedAt,
		UpdatedAt:        i.UpdatedAt,
		Items:            items,
	}
}

// ToModel leaves Items out; items are written through CreateItem.
func (m *InvoiceMapper) ToModel(i *entity.Invoice) *model.Invoice {
	if i == nil {
		return nil
	}
	return &model.Invoice{
		Id:               i.Id,
		InvoiceNumber:    i.InvoiceNumber,
		SubscriptionId:   i.SubscriptionId,
		UserId:           i.UserId,
		InvoiceType:      string(i.InvoiceType),
		BillingMonth:     i.BillingMonth,
		BillingYear:      i.BillingYear,
		DueDate:          i.DueDate,
		Subtotal:         i.Subtotal,
		TaxAmount:        i.TaxAmount,
		TotalAmount:      i.TotalAmount,
		PaymentStatus:    string(i.PaymentStatus),
		PaidAmount:       i.PaidAmount,
		PaidAt:           i.PaidAt,
		PaymentMethod:    i.PaymentMethod,
		PaymentReference: i.PaymentReference,
		AdminNotes:       i.AdminNotes,
		CreatedAt:        i.CreatedAt,
		UpdatedAt:        i.UpdatedAt,
	}
}

func (m *InvoiceMapper) ItemToEntity(i *model.InvoiceItem) *entity.InvoiceItem {
	if i == nil {
		return nil
	}
	return &entity.InvoiceItem{
		Id:          i.Id,
		InvoiceId:   i.InvoiceId,
		ServiceId:   i.ServiceId,
		Description: i.Description,
		Quantity:    i.Quantity,
		UnitPrice:   i.UnitPrice,
		TotalPrice:  i.TotalPrice,
		CreatedAt:   i.CreatedAt,
	}
}

func (m *InvoiceMapper) ItemToModel(i *entity.InvoiceItem) *model.InvoiceItem {
	if i == nil {
		return nil
	}
	return &model.InvoiceItem{
		Id:          i.Id,
		InvoiceId:   i.InvoiceId,
		ServiceId:   i.ServiceId,
		Description: i.Description,
		Quantity:    i.Quantity,
		UnitPrice:   i.UnitPrice,
		TotalPrice:  i.TotalPrice,
		CreatedAt:   i.CreatedAt,
	}
}
