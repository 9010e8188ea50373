package http

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/lozadatravelagent/whole-sale-sub002/internal/gateway/service"
	"github.com/lozadatravelagent/whole-sale-sub002/pkg/httpx"
	"github.com/lozadatravelagent/whole-sale-sub002/pkg/searchsdk"
)

var validate = newValidator()

// newValidator reports fields by their JSON names so error descriptions
// match the request body the client sent.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func writeError(w http.ResponseWriter, status int, code, desc string) {
	httpx.WriteJSON(w, status, searchsdk.ErrorResponse{
		Error:            code,
		ErrorDescription: desc,
	})
}

// writeValidationError turns the first failed rule into an invalid_request
// description such as "scopes is required".
func writeValidationError(w http.ResponseWriter, err error) {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) || len(ve) == 0 {
		writeError(w, http.StatusBadRequest, searchsdk.ErrorCodeInvalidRequest, "Invalid request body")
		return
	}

	fe := ve[0]
	field := trimRoot(fe.Namespace())
	var desc string
	switch fe.Tag() {
	case "required":
		desc = field + " is required"
	case "max":
		desc = fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "min":
		desc = fmt.Sprintf("%s must contain at least %s entries", field, fe.Param())
	default:
		desc = fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
	writeError(w, http.StatusBadRequest, searchsdk.ErrorCodeInvalidRequest, desc)
}

// trimRoot drops the struct name validator puts in front of namespaces.
func trimRoot(ns string) string {
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

// writeGatewayError maps a pipeline failure to its status and stable code.
// Store details and causes never reach the client.
func writeGatewayError(w http.ResponseWriter, ge *service.GatewayError) {
	if ge.Code == service.CodeRateLimitExceeded {
		w.Header().Set("Retry-After", strconv.Itoa(httpx.RetryAfterSeconds(ge.RetryAfter)))
	}
	if ge.Status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", `ApiKey error="`+ge.Code+`"`)
	}
	writeError(w, ge.Status, ge.Code, ge.Message)
}
