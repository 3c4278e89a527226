package validator

import (
	"github.com/blossomshop/payments/pkg/phone"
	"github.com/go-playground/validator/v10"
)

const MpesaPhoneTag = "mpesa_phone"

var valid = map[string]func(fl validator.FieldLevel) bool{
	MpesaPhoneTag: ValidateMpesaPhone,
}

func ValidateMpesaPhone(fl validator.FieldLevel) bool {
	return phone.IsValidKenyan(fl.Field().String())
}
