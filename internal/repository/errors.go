package repository

import (
	"errors"

	"admincs/internal/apierror"
	"admincs/internal/model"

	"gorm.io/gorm"
)

// translate maps GORM/driver errors onto the apierror taxonomy. It relies on
// gorm.Config.TranslateError so that unique violations surface as ErrDuplicatedKey.
func translate(err error, recurso string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apierror.NotFound(recurso + " no encontrado")
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apierror.Conflict(recurso+" duplicado", err)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return apierror.ValidationField("referencia", recurso+" referencia un registro inexistente")
	case errors.Is(err, gorm.ErrCheckConstraintViolated):
		return apierror.Validation(recurso + " viola una restricción de integridad")
	case errors.Is(err, model.ErrVinculoInvalido):
		return apierror.Validation(err.Error())
	default:
		return apierror.Internal(err)
	}
}
