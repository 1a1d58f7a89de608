package api

import (
	"strconv"

	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/bookcourier/bookcourier-server/internal/errors"
	"github.com/bookcourier/bookcourier-server/internal/http/response"
)

// EnvelopeVersion is the response envelope schema version.
const EnvelopeVersion = response.Version

// EnvelopeTransformer wraps every huma response body in the versioned
// envelope. Errors keep their code and details; everything else becomes
// data.
func EnvelopeTransformer(_ huma.Context, status string, v any) (any, error) {
	switch body := v.(type) {
	case *APIError:
		return response.Fail(domainerrors.Code(body.Code), body.Message, body.Details), nil
	case error:
		code, _ := strconv.Atoi(status) //nolint:errcheck // huma always passes a numeric status
		return response.Fail(statusToCode(code), body.Error(), nil), nil
	}
	return response.Ok(v), nil
}
