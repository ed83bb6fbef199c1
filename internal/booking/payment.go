package booking

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/iliyamo/cinetick/internal/model"
)

// PaymentForm is the card form of the checkout step.  It is only checked
// when paying by card.
type PaymentForm struct {
	CardNumber string `json:"card_number" validate:"required,cardnumber"`
	CardName   string `json:"card_name" validate:"required"`
	Expiry     string `json:"expiry" validate:"required"`
	CVV        string `json:"cvv" validate:"required,len=3,digits"`
}

// Normalized trims surrounding blanks from every field.
func (f PaymentForm) Normalized() PaymentForm {
	return PaymentForm{
		CardNumber: strings.TrimSpace(f.CardNumber),
		CardName:   strings.TrimSpace(f.CardName),
		Expiry:     strings.TrimSpace(f.Expiry),
		CVV:        strings.TrimSpace(f.CVV),
	}
}

// MaskedCard keeps the last four digits of the card number.
func (f PaymentForm) MaskedCard() string {
	d := stripCard(f.CardNumber)
	if len(d) < 4 {
		return ""
	}
	return "**** **** **** " + d[len(d)-4:]
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("cardnumber", func(fl validator.FieldLevel) bool {
		d := stripCard(fl.Field().String())
		return len(d) == 16 && allDigits(d)
	})
	_ = v.RegisterValidation("digits", func(fl validator.FieldLevel) bool {
		return allDigits(fl.Field().String())
	})
	return v
}

// stripCard removes the separators users type between digit groups.
func stripCard(s string) string {
	return strings.NewReplacer(" ", "", "-", "").Replace(s)
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

var fieldMessages = map[string]string{
	"card_number": "card number must have 16 digits",
	"card_name":   "cardholder name is required",
	"expiry":      "expiry date is required",
	"cvv":         "CVV must have 3 digits",
}

// ValidatePayment checks the method and, for cards, every form field.  It
// returns a *ValidationError listing each offending field.
func ValidatePayment(method string, form PaymentForm) error {
	switch method {
	case model.PaymentPayPal:
		return nil
	case model.PaymentCard:
	case "":
		return &ValidationError{Message: "choose a payment method", Fields: FieldErrors{"method": "required"}}
	default:
		return &ValidationError{Message: "unsupported payment method", Fields: FieldErrors{"method": method}}
	}

	err := validate.Struct(form.Normalized())
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &ValidationError{Message: err.Error()}
	}
	fields := FieldErrors{}
	for _, fe := range verrs {
		fields[fe.Field()] = fieldMessages[fe.Field()]
	}
	return &ValidationError{Message: "incomplete or invalid card details", Fields: fields}
}
