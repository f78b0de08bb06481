package chi

import (
	"errors"
	"net/http"

	"github.com/kailas-cloud/complydex/internal/domain"
)

// errorMapper tries to translate a domain error. ok is false if it does not apply.
type errorMapper func(err error) (status int, body ErrorResponse, ok bool)

// errorMappers is consulted in order; the first match wins.
var errorMappers = []errorMapper{
	validationMapper,
	upstreamMapper,
	sentinelMapper(domain.ErrDuplicateName, http.StatusConflict, CodeDuplicateName),
	sentinelMapper(domain.ErrUnauthorized, http.StatusForbidden, CodeForbidden),
	sentinelMapper(domain.ErrNotFound, http.StatusNotFound, CodeNotFound),
}

// classify maps err to an HTTP status and a client-safe body.
func classify(err error) (int, ErrorResponse) {
	for _, m := range errorMappers {
		if status, body, ok := m(err); ok {
			return status, body
		}
	}
	return http.StatusInternalServerError, ErrorResponse{Code: CodeInternalError, Message: "internal error"}
}

func validationMapper(err error) (int, ErrorResponse, bool) {
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		return 0, ErrorResponse{}, false
	}
	return http.StatusBadRequest, ErrorResponse{
		Code:    CodeValidationFailed,
		Message: ve.Error(),
		Param:   ve.Param,
	}, true
}

// upstreamMapper hides the store error and exposes only the collection and failure kind.
func upstreamMapper(err error) (int, ErrorResponse, bool) {
	var ue *domain.UpstreamFetchError
	if !errors.As(err, &ue) {
		return 0, ErrorResponse{}, false
	}
	body := ErrorResponse{
		Code:       CodeUpstreamUnavailable,
		Message:    domain.ErrUpstreamFetch.Error() + ": " + string(ue.Kind),
		Collection: ue.Collection,
	}
	status := http.StatusBadGateway
	if ue.Kind == domain.UpstreamTimeout {
		status = http.StatusGatewayTimeout
		body.Code = CodeUpstreamTimeout
	}
	return status, body, true
}

// sentinelMapper matches a single sentinel. Wrapped causes never reach the message.
func sentinelMapper(sentinel error, status int, code ErrorCode) errorMapper {
	return func(err error) (int, ErrorResponse, bool) {
		if !errors.Is(err, sentinel) {
			return 0, ErrorResponse{}, false
		}
		return status, ErrorResponse{Code: code, Message: safeMessage(err, sentinel)}, true
	}
}

func safeMessage(err, sentinel error) string {
	var dn *domain.DuplicateNameError
	if errors.As(err, &dn) {
		return dn.Error()
	}
	var ua *domain.UnauthorizedError
	if errors.As(err, &ua) {
		return ua.Error()
	}
	return sentinel.Error()
}
