// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// displayCurrencies is the fixed set of currencies the dashboard can value
// holdings in. USD is always the valuation anchor.
var displayCurrencies = map[string]bool{
	"USD": true,
	"CNY": true,
	"HKD": true,
}

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("display_currency", validateDisplayCurrency)
		_ = v.RegisterValidation("asset_category", validateAssetCategory)
		_ = v.RegisterValidation("holding_list", validateHoldingList)
	}
}

func validateDisplayCurrency(fl validator.FieldLevel) bool {
	return displayCurrencies[fl.Field().String()]
}

func validateAssetCategory(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "Cash", "Stock", "Bond", "Crypto", "RealEstate", "Other":
		return true
	}
	return false
}

func validateHoldingList(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "portfolio", "watchlist":
		return true
	}
	return false
}
