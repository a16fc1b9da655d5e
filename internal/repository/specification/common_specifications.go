package specification

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ByID filters by ID
type ByID struct {
	ID uuid.UUID
}

func (s ByID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("id = ?", s.ID)
}

// ByIDs filters by a list of IDs
type ByIDs struct {
	IDs []uuid.UUID
}

func (s ByIDs) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("id IN ?", s.IDs)
}

// OrderBy applies ordering
type OrderBy struct {
	Field string
	Desc  bool
}

func (s OrderBy) Apply(db *gorm.DB) *gorm.DB {
	direction := "ASC"
	if s.Desc {
		direction = "DESC"
	}
	return db.Order(fmt.Sprintf("%s %s", s.Field, direction))
}

// Pagination
type Pagination struct {
	Limit  int
	Offset int
}

func (s Pagination) Apply(db *gorm.DB) *gorm.DB {
	return db.Limit(s.Limit).Offset(s.Offset)
}

// FilterBy Generic Filter
type FilterBy struct {
	Field string
	Value interface{}
}

func (s FilterBy) Apply(db *gorm.DB) *gorm.DB {
	query := fmt.Sprintf("%s = ?", s.Field)
	return db.Where(query, s.Value)
}

func Filter(field string, value interface{}) Specification {
	return FilterBy{Field: field, Value: value}
}

// FilterIn matches any of the given values.
type FilterIn struct {
	Field  string
	Values []interface{}
}

func (s FilterIn) Apply(db *gorm.DB) *gorm.DB {
	return db.Where(fmt.Sprintf("%s IN ?", s.Field), s.Values)
}

// Before filters rows whose time column is strictly earlier than At.
type Before struct {
	Field string
	At    time.Time
}

func (s Before) Apply(db *gorm.DB) *gorm.DB {
	return db.Where(fmt.Sprintf("%s < ?", s.Field), s.At)
}

// OnOrAfter filters rows whose time column is at or later than At.
type OnOrAfter struct {
	Field string
	At    time.Time
}

func (s OnOrAfter) Apply(db *gorm.DB) *gorm.DB {
	return db.Where(fmt.Sprintf("%s >= ?", s.Field), s.At)
}

// ForUpdate takes a row lock (SELECT ... FOR UPDATE). Only meaningful inside
// a unit of work transaction.
type ForUpdate struct{}

func (s ForUpdate) Apply(db *gorm.DB) *gorm.DB {
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}
