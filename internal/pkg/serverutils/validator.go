package serverutils

import (
	"github.com/go-playground/validator/v10"

	"support-chat-be/pkg/apperr"
)

var validate = validator.New()

// ValidateRequest runs struct-tag validation and maps failures to
// INVALID_ARGUMENT so the error middleware and ws dispatcher render them
// uniformly.
func ValidateRequest(req interface{}) error {
	if err := validate.Struct(req); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
			return apperr.Newf(apperr.KindInvalidArgument, "validation failed on field '%s' (%s)", errs[0].Field(), errs[0].Tag())
		}
		return apperr.Wrap(apperr.KindInvalidArgument, "validation failed", err)
	}
	return nil
}
