package middleware

import (
	"net/http"

	"github.com/go-chi/jwtauth/v5"
	"github.com/greenledger/fiscal-backend-go/internal/handler/http/response"
)

// AuthRequired rejects requests without a verified access token carrying a
// company claim. Handlers downstream read the tenant via CompanyID.
func AuthRequired(ja *jwtauth.JWTAuth) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		hfn := func(w http.ResponseWriter, r *http.Request) {
			token, claims, err := jwtauth.FromContext(r.Context())
			if err != nil {
				response.Unauthorized(w, err.Error())
				return
			}
			if token == nil {
				response.Unauthorized(w, "Missing access token")
				return
			}

			tokenType, ok := claims["type"].(string)
			if !ok || tokenType != "access" {
				response.Unauthorized(w, "Invalid token type")
				return
			}

			companyID, ok := claims["company_id"].(string)
			if !ok || companyID == "" {
				response.Forbidden(w, "Token carries no company")
				return
			}

			next.ServeHTTP(w, r)
		}
		return http.HandlerFunc(hfn)
	}
}

// CompanyID extracts the tenant from the verified token. AuthRequired has
// already guaranteed the claim is present.
func CompanyID(r *http.Request) string {
	_, claims, err := jwtauth.FromContext(r.Context())
	if err != nil {
		return ""
	}
	companyID, _ := claims["company_id"].(string)
	return companyID
}

// UserID extracts the acting user, used as the approver identity on payroll
// transitions.
func UserID(r *http.Request) string {
	_, claims, err := jwtauth.FromContext(r.Context())
	if err != nil {
		return ""
	}
	userID, _ := claims["sub"].(string)
	return userID
}
