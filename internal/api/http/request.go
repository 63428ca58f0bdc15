package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/cinefeed/cinefeed/pkg/httpx"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// decodeAndValidate decodes the JSON body into dst and runs struct
// validation. On failure it writes the error itself and returns false; every
// violated rule is reported, not just the first.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		errInvalidRequest.WriteError(w)
		return false
	}

	if err := validate.Struct(dst); err != nil {
		var invalid *validator.InvalidValidationError
		if errors.As(err, &invalid) {
			errServer.WriteError(w)
			return false
		}

		var details []string
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
				details = append(details, describeFieldError(fe))
			}
		}
		validationError(details).WriteError(w)
		return false
	}

	return true
}

func describeFieldError(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field()[:1]) + fe.Field()[1:]

	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email address"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "alphanum":
		return field + " must contain only letters and digits"
	default:
		return fmt.Sprintf("%s failed the %s rule", field, fe.Tag())
	}
}

// respond writes the success envelope shared by every endpoint.
func respond(w http.ResponseWriter, code int, message string, data any) {
	body := map[string]any{
		"success": true,
		"message": message,
	}
	if data != nil {
		body["data"] = data
	}
	httpx.WriteJSON(w, code, body)
}
