package testutil

import (
	"fmt"

	"github.com/SpacksD/dulmar1-sub001/internal/entity"
)

func unknownColumn(table, column string) interface{} {
	panic(fmt.Sprintf("testutil: unknown column %s.%s", table, column))
}

func userField(u entity.User, column string) interface{} {
	switch column {
	case "id":
		return u.Id
	case "email":
		return u.Email
	case "role":
		return string(u.Role)
	case "created_at":
		return u.CreatedAt
	}
	return unknownColumn("users", column)
}

func serviceField(s entity.Service, column string) interface{} {
	switch column {
	case "id":
		return s.Id
	case "name":
		return s.Name
	case "category":
		return string(s.Category)
	case "is_active":
		return s.IsActive
	case "created_at":
		return s.CreatedAt
	}
	return unknownColumn("services", column)
}

func timeSlotField(t entity.TimeSlot, column string) interface{} {
	switch column {
	case "id":
		return t.Id
	case "start_time":
		return t.StartTime
	case "is_active":
		return t.IsActive
	}
	return unknownColumn("time_slots", column)
}

func promotionField(p entity.Promotion, column string) interface{} {
	switch column {
	case "id":
		return p.Id
	case "promo_code":
		return p.PromoCode
	case "is_active":
		return p.IsActive
	case "start_date":
		return p.StartDate
	case "end_date":
		return p.EndDate
	case "created_at":
		return p.CreatedAt
	}
	return unknownColumn("promotions", column)
}

func subscriptionField(s entity.Subscription, column string) interface{} {
	switch column {
	case "id":
		return s.Id
	case "user_id":
		return s.UserId
	case "service_id":
		return s.ServiceId
	case "status":
		return string(s.Status)
	case "created_at":
		return s.CreatedAt
	}
	return unknownColumn("subscriptions", column)
}

func sessionField(s entity.Session, column string) interface{} {
	switch column {
	case "id":
		return s.Id
	case "subscription_id":
		return s.SubscriptionId
	case "session_date":
		return s.SessionDate
	case "session_number":
		return s.SessionNumber
	case "status":
		return string(s.Status)
	}
	return unknownColumn("sessions", column)
}

func invoiceField(i entity.Invoice, column string) interface{} {
	switch column {
	case "id":
		return i.Id
	case "invoice_number":
		return i.InvoiceNumber
	case "subscription_id":
		return i.SubscriptionId
	case "user_id":
		return i.UserId
	case "invoice_type":
		return string(i.InvoiceType)
	case "billing_month":
		return i.BillingMonth
	case "billing_year":
		return i.BillingYear
	case "due_date":
		return i.DueDate
	case "payment_status":
		return string(i.PaymentStatus)
	case "created_at":
		return i.CreatedAt
	}
	return unknownColumn("invoices", column)
}

func paymentRecordField(p entity.PaymentRecord, column string) interface{} {
	switch column {
	case "id":
		return p.Id
	case "invoice_id":
		return p.InvoiceId
	case "user_id":
		return p.UserId
	case "status":
		return string(p.Status)
	case "created_at":
		return p.CreatedAt
	}
	return unknownColumn("payment_records", column)
}

func bookingField(b entity.Booking, column string) interface{} {
	switch column {
	case "id":
		return b.Id
	case "user_id":
		return b.UserId
	case "service_id":
		return b.ServiceId
	case "subscription_id":
		return b.SubscriptionId
	case "promotion_id":
		return b.PromotionId
	case "status":
		return string(b.Status)
	case "payment_status":
		return string(b.PaymentStatus)
	case "created_at":
		return b.CreatedAt
	}
	return unknownColumn("bookings", column)
}
