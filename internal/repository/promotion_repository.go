package repository

import (
	"context"
	"errors"
	"slices"

	"github.com/iliyamo/cinetick/internal/model"
)

// ErrPromotionNotFound indicates an unknown promotion ID.
var ErrPromotionNotFound = errors.New("promotion not found")

// PromotionRepo serves the current marketing offers.
type PromotionRepo struct {
	lat   Latency
	promo []model.Promotion
}

func NewPromotionRepo(lat Latency) *PromotionRepo {
	return &PromotionRepo{lat: lat, promo: []model.Promotion{
		{ID: 1, Title: "2x1 en entradas", Description: "Compra una entrada y lleva otra gratis para cualquier película de lunes a jueves.",
			ValidUntil: "2025-06-30", Code: "CINETICK2X1"},
		{ID: 2, Title: "Combo familiar", Description: "4 entradas + 2 combos grandes de palomitas y bebidas con 30% de descuento.",
			ValidUntil: "2025-06-15", Code: "FAMCINETICK", Exclusive: true},
		{ID: 3, Title: "Noche de estrenos", Description: "Acceso exclusivo a pre-estrenos con 20% de descuento en combos.",
			ValidUntil: "2025-07-31", Code: "PREESTRENO", Exclusive: true},
		{ID: 4, Title: "Descuento estudiantes", Description: "50% de descuento en entradas presentando carnet estudiantil.",
			ValidUntil: "2025-12-31", Code: "ESTUDIANTE"},
	}}
}

// List returns every promotion.  Codes are only revealed by claiming.
func (r *PromotionRepo) List(ctx context.Context) ([]model.Promotion, error) {
	if err := wait(ctx, r.lat.Load); err != nil {
		return nil, err
	}
	return slices.Clone(r.promo), nil
}

// GetByID returns a promotion including its code.
func (r *PromotionRepo) GetByID(ctx context.Context, id uint64) (model.Promotion, error) {
	if err := wait(ctx, r.lat.Load); err != nil {
		return model.Promotion{}, err
	}
	for _, p := range r.promo {
		if p.ID == id {
			return p, nil
		}
	}
	return model.Promotion{}, ErrPromotionNotFound
}
