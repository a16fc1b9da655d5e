package testutil

import (
	"fmt"
	"sort"
	"time"

	"github.com/SpacksD/dulmar1-sub001/internal/repository/specification"

	"github.com/google/uuid"
)

// fieldFunc returns the column value of a row, normalized: ids as strings,
// enums as strings, nil for NULL.
type fieldFunc[T any] func(row T, column string) interface{}

func normalize(v interface{}) interface{} {
	switch x := v.(type) {
	case nil:
		return nil
	case uuid.UUID:
		return x.String()
	case *uuid.UUID:
		if x == nil {
			return nil
		}
		return x.String()
	case *string:
		if x == nil {
			return nil
		}
		return *x
	case *int:
		if x == nil {
			return nil
		}
		return *x
	case *time.Time:
		if x == nil {
			return nil
		}
		return *x
	case string, int, int64, bool, time.Time:
		return x
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

func equal(a, b interface{}) bool {
	a, b = normalize(a), normalize(b)
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if ta, ok := a.(time.Time); ok {
		tb, ok := b.(time.Time)
		return ok && ta.Equal(tb)
	}
	return fmt.Sprint(a) == fmt.Sprint(b)
}

func less(a, b interface{}) bool {
	a, b = normalize(a), normalize(b)
	switch x := a.(type) {
	case time.Time:
		y, _ := b.(time.Time)
		return x.Before(y)
	case int:
		y, _ := b.(int)
		return x < y
	case int64:
		y, _ := b.(int64)
		return x < y
	}
	return fmt.Sprint(a) < fmt.Sprint(b)
}

func asTime(v interface{}) (time.Time, bool) {
	t, ok := normalize(v).(time.Time)
	return t, ok
}

// query evaluates specifications against rows the way the gorm
// implementations would: filters first, then ordering, then pagination.
func query[T any](rows []T, field fieldFunc[T], specs []specification.Specification) []T {
	var (
		orders []specification.OrderBy
		page   *specification.Pagination
	)

	filtered := make([]T, 0, len(rows))
	for _, row := range rows {
		if matches(row, field, specs) {
			filtered = append(filtered, row)
		}
	}

	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.OrderBy:
			orders = append(orders, s)
		case specification.Pagination:
			p := s
			page = &p
		}
	}

	if len(orders) > 0 {
		sort.SliceStable(filtered, func(i, j int) bool {
			for _, o := range orders {
				a, b := field(filtered[i], o.Field), field(filtered[j], o.Field)
				if equal(a, b) {
					continue
				}
				if o.Desc {
					return less(b, a)
				}
				return less(a, b)
			}
			return false
		})
	}

	if page != nil {
		if page.Offset >= len(filtered) {
			return []T{}
		}
		filtered = filtered[page.Offset:]
		if page.Limit > 0 && page.Limit < len(filtered) {
			filtered = filtered[:page.Limit]
		}
	}
	return filtered
}

func matches[T any](row T, field fieldFunc[T], specs []specification.Specification) bool {
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByID:
			if !equal(field(row, "id"), s.ID) {
				return false
			}
		case specification.ByIDs:
			found := false
			for _, id := range s.IDs {
				if equal(field(row, "id"), id) {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		case specification.ByEmail:
			if !equal(field(row, "email"), s.Email) {
				return false
			}
		case specification.UserOwnedBy:
			if !equal(field(row, "user_id"), s.UserID) {
				return false
			}
		case specification.BySubscriptionID:
			if !equal(field(row, "subscription_id"), s.SubscriptionID) {
				return false
			}
		case specification.ByInvoiceID:
			if !equal(field(row, "invoice_id"), s.InvoiceID) {
				return false
			}
		case specification.ByPromoCode:
			if !equal(field(row, "promo_code"), s.Code) {
				return false
			}
		case specification.ByStatus:
			if !equal(field(row, "status"), s.Status) {
				return false
			}
		case specification.ForPeriod:
			if !equal(field(row, "billing_month"), s.Month) || !equal(field(row, "billing_year"), s.Year) {
				return false
			}
		case specification.FilterBy:
			if !equal(field(row, s.Field), s.Value) {
				return false
			}
		case specification.FilterIn:
			found := false
			for _, v := range s.Values {
				if equal(field(row, s.Field), v) {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		case specification.Before:
			t, ok := asTime(field(row, s.Field))
			if !ok || !t.Before(s.At) {
				return false
			}
		case specification.OnOrAfter:
			t, ok := asTime(field(row, s.Field))
			if !ok || t.Before(s.At) {
				return false
			}
		case specification.OrderBy, specification.Pagination, specification.ForUpdate:
		default:
			panic(fmt.Sprintf("testutil: unsupported specification %T", spec))
		}
	}
	return true
}
