package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"
)

/* There are two solutions to avoiding cyclic imports between `auth` and `members` packages:
1. merge the two in the members package
2. adopt and maintain an interface as a dependency in the auth package
*/

type contextKey string

const identityKey contextKey = "identity"

// Roles are the privileges a member currently holds.
type Roles struct {
	IsDJ    bool `db:"is_dj"`
	IsAdmin bool `db:"is_admin"`
}

type memberChecker interface {
	// MemberRoles returns the stored roles of the member, or false when the member doesn't exist.
	MemberRoles(ctx context.Context, id int64) (Roles, bool)
}

// Authenticate attaches the identity found in a valid bearer token to the request context, with the roles
// the member holds now rather than those claimed at issue. Requests lacking a valid token, or bearing that
// of a since deleted member, proceed anonymously and are turned down by the Require middleware of
// protected routes.
func Authenticate(issuer *Issuer, mc memberChecker) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, request *http.Request) {
			token, err := parseBearer(request)
			if err != nil {
				next.ServeHTTP(w, request)
				return
			}

			identity, err := issuer.Parse(token)
			if err != nil {
				next.ServeHTTP(w, request)
				return
			}
			roles, found := mc.MemberRoles(request.Context(), identity.MemberID)
			if !found {
				next.ServeHTTP(w, request)
				return
			}
			identity.IsDJ, identity.IsAdmin = roles.IsDJ, roles.IsAdmin

			// create a new context, stemming from the original one, adding the identity for future reference
			next.ServeHTTP(w, request.WithContext(context.WithValue(request.Context(), identityKey, identity)))
		})
	}
}

// requireIdentity builds middleware admitting the requests whose identity satisfies allowed.
func requireIdentity(allowed func(identity Identity, request *http.Request) bool) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, request *http.Request) {
			identity, found := GetIdentity(request)
			if !found || !allowed(identity, request) {
				reportUnauthorised(w)
				return
			}
			next.ServeHTTP(w, request)
		})
	}
}

// RequireMember admits any authenticated member.
func RequireMember() func(next http.Handler) http.Handler {
	return requireIdentity(func(Identity, *http.Request) bool { return true })
}

// RequireDJ admits DJs and admins.
func RequireDJ() func(next http.Handler) http.Handler {
	return requireIdentity(func(identity Identity, _ *http.Request) bool { return identity.IsDJ || identity.IsAdmin })
}

func RequireAdmin() func(next http.Handler) http.Handler {
	return requireIdentity(func(identity Identity, _ *http.Request) bool { return identity.IsAdmin })
}

// RequireSelfOrAdmin admits admins and the member whose username matches the route parameter.
func RequireSelfOrAdmin(param string) func(next http.Handler) http.Handler {
	return requireIdentity(func(identity Identity, request *http.Request) bool {
		return identity.IsAdmin || identity.Username == httprouter.ParamsFromContext(request.Context()).ByName(param)
	})
}

// parseBearer extracts the token from the authorization header.
func parseBearer(request *http.Request) (string, error) {
	var header = request.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		if token := strings.TrimSpace(header[7:]); token != "" {
			return token, nil
		}
	}
	return "", errors.New("bad authorization header")
}

func GetIdentity(request *http.Request) (Identity, bool) {
	identity, found := request.Context().Value(identityKey).(Identity)
	return identity, found
}

// MustGetIdentity returns the request's identity and panics when it's missing, which signals a route
// registered without the Require middleware.
func MustGetIdentity(request *http.Request) Identity {
	identity, found := GetIdentity(request)
	if !found {
		panic("missing identity: route registered without authentication middleware")
	}
	return identity
}

// CanActAs reports whether the request's identity is the member or an admin.
func CanActAs(request *http.Request, memberID int64) bool {
	identity, found := GetIdentity(request)
	return found && (identity.IsAdmin || identity.MemberID == memberID)
}

func reportUnauthorised(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	w.WriteHeader(http.StatusUnauthorized)
}
