package service

import (
	"context"
	"time"

	"admincs/internal/apierror"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	layoutFecha   = "2006-01-02"
	layoutPeriodo = "2006-01"
)

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// conReintento runs fn and, if it fails with a conflict, runs it exactly once
// more. fn must re-read everything it depends on.
func conReintento(op string, fn func() error) error {
	err := fn()
	if !apierror.Is(err, apierror.KindConflict) {
		return err
	}
	log.Warn().Err(err).Str("op", op).Msg("conflicto de escritura, reintentando")
	return fn()
}

func parseFecha(campo, s string) (time.Time, error) {
	t, err := time.Parse(layoutFecha, s)
	if err != nil {
		return time.Time{}, apierror.ValidationField(campo, "fecha inválida, se espera AAAA-MM-DD")
	}
	return t, nil
}

func parseFechaOpt(campo string, s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := parseFecha(campo, *s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func formatFecha(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(layoutFecha)
	return &s
}

func strPtr(s string) *string { return &s }

func decPtr(d decimal.Decimal) *decimal.Decimal { return &d }
