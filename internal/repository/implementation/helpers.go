package implementation

import (
	"errors"

	"github.com/SpacksD/dulmar1-sub001/internal/repository/contract"
	"github.com/SpacksD/dulmar1-sub001/internal/repository/specification"

	"gorm.io/gorm"
)

func applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

// translateWriteError maps driver unique violations onto the contract
// sentinel. Requires gorm.Config.TranslateError.
func translateWriteError(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return contract.ErrDuplicate
	}
	return err
}
