package gate

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/gophgate/internal/common"
	"google.golang.org/grpc/codes"
)

// Rejection is the fixed, caller-visible form of a gate failure. Message
// never carries internal detail.
type Rejection struct {
	HTTPStatus int
	GRPCCode   codes.Code
	Code       string
	Message    string
}

var (
	rejectMissing = Rejection{http.StatusUnauthorized, codes.Unauthenticated, "unauthenticated", "missing or malformed authentication token"}
	rejectExpired = Rejection{http.StatusUnauthorized, codes.Unauthenticated, "token_expired", "token expired"}
	rejectInvalid = Rejection{http.StatusUnauthorized, codes.Unauthenticated, "invalid_token", "invalid token"}
	rejectRole    = Rejection{http.StatusForbidden, codes.PermissionDenied, "forbidden", "insufficient role"}
	rejectServer  = Rejection{http.StatusInternalServerError, codes.Internal, "internal", "internal server error"}
)

// RejectionFor maps an Authenticate or Authorize error to its rejection.
// Unknown errors become an internal server error.
func RejectionFor(err error) Rejection {
	switch {
	case errors.Is(err, common.ErrorMissingCredential):
		return rejectMissing
	case errors.Is(err, common.ErrorExpiredCredential):
		return rejectExpired
	case errors.Is(err, common.ErrorInvalidCredential):
		return rejectInvalid
	case errors.Is(err, common.ErrorInsufficientRole):
		return rejectRole
	}
	return rejectServer
}
