package valueobject

import (
	"strings"

	"github.com/ignatzorin/gig-marketplace/internal/pkg/apperror"
	"github.com/shopspring/decimal"
)

// minorUnitExponent количество знаков дробной части валюты расчётов (центы).
const minorUnitExponent = 2

// ParseAmount разбирает неотрицательную сумму из строки.
func ParseAmount(field, raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, apperror.InvalidRequest(field + " is required")
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, apperror.InvalidRequest(field + " must be a number")
	}
	if amount.IsNegative() {
		return decimal.Zero, apperror.InvalidRequest(field + " must not be negative")
	}
	return amount.Round(minorUnitExponent), nil
}

// ToMinorUnits переводит сумму в минимальные единицы валюты для провайдера.
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(minorUnitExponent).Round(0).IntPart()
}

// FromMinorUnits обратное преобразование для сумм, пришедших от провайдера.
func FromMinorUnits(minor int64) decimal.Decimal {
	return decimal.New(minor, -minorUnitExponent)
}
