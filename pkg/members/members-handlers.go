package members

import (
	"net/http"

	"github.com/silktrader/onair/pkg/auth"
	JSON "github.com/silktrader/onair/pkg/json-utilities"
	"github.com/silktrader/onair/pkg/rest"
)

func RegisterHandlers(engine *rest.Engine, ms Storer, issuer *auth.Issuer) {
	engine.Post("/auth/token", authenticate(ms, issuer))
	engine.Post("/auth/register", signUp(ms, issuer))

	engine.Post("/members", register(ms, issuer), auth.RequireAdmin())
	engine.Get("/members", getMembers(ms), auth.RequireAdmin())
	engine.Get("/members/:username", getMember(ms), auth.RequireSelfOrAdmin("username"))
	engine.Patch("/members/:username", updateMember(ms), auth.RequireSelfOrAdmin("username"))
	engine.Delete("/members/:username", removeMember(ms), auth.RequireSelfOrAdmin("username"))
}

func identityOf(member Member) auth.Identity {
	return auth.Identity{
		MemberID: member.ID,
		Username: member.Username,
		IsDJ:     member.IsDJ,
		IsAdmin:  member.IsAdmin,
	}
}

func authenticate(ms Storer, issuer *auth.Issuer) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		data, err := JSON.DecodeValidate[Credentials](request)
		if err != nil {
			JSON.ValidationError(writer, err)
			return
		}

		member, err := ms.Authenticate(request.Context(), data.Username, data.Password)
		if err != nil {
			JSON.Error(writer, request, err)
			return
		}

		token, err := issuer.Issue(identityOf(member))
		if err != nil {
			JSON.InternalServerError(writer, request, err)
			return
		}
		JSON.Ok(writer, map[string]string{"token": token})
	}
}

// signUp lets anyone register as a plain member; roles are granted by admins later on.
func signUp(ms Storer, issuer *auth.Issuer) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		data, err := JSON.DecodeValidate[SignUpData](request)
		if err != nil {
			JSON.ValidationError(writer, err)
			return
		}

		member, err := ms.Register(request.Context(), data.registration())
		if err != nil {
			JSON.Error(writer, request, err)
			return
		}

		token, err := issuer.Issue(identityOf(member))
		if err != nil {
			JSON.InternalServerError(writer, request, err)
			return
		}
		rest.Logger(request).WithField("member", member.Username).Info("member signed up")
		JSON.Created(writer, map[string]string{"token": token})
	}
}

func register(ms Storer, issuer *auth.Issuer) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		data, err := JSON.DecodeValidate[RegisterData](request)
		if err != nil {
			JSON.ValidationError(writer, err)
			return
		}

		member, err := ms.Register(request.Context(), data)
		if err != nil {
			JSON.Error(writer, request, err)
			return
		}

		token, err := issuer.Issue(identityOf(member))
		if err != nil {
			JSON.InternalServerError(writer, request, err)
			return
		}
		JSON.Created(writer, map[string]any{"member": member, "token": token})
	}
}

func getMembers(ms Storer) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		members, err := ms.GetAll(request.Context())
		if err != nil {
			JSON.InternalServerError(writer, request, err)
			return
		}
		JSON.Ok(writer, map[string]any{"members": members})
	}
}

func getMember(ms Storer) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		member, err := ms.Get(request.Context(), rest.GetParam(request, "username"))
		if err != nil {
			JSON.Error(writer, request, err)
			return
		}
		JSON.Ok(writer, map[string]any{"member": member})
	}
}

func updateMember(ms Storer) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		data, err := JSON.DecodeValidate[UpdateData](request)
		if err != nil {
			JSON.ValidationError(writer, err)
			return
		}

		// members may edit their profile but not grant themselves roles
		if data.ChangesRoles() && !auth.MustGetIdentity(request).IsAdmin {
			JSON.Forbidden(writer)
			return
		}

		member, err := ms.Update(request.Context(), rest.GetParam(request, "username"), data)
		if err != nil {
			JSON.Error(writer, request, err)
			return
		}
		JSON.Ok(writer, map[string]any{"member": member})
	}
}

func removeMember(ms Storer) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		var username = rest.GetParam(request, "username")
		if err := ms.Remove(request.Context(), username); err != nil {
			JSON.Error(writer, request, err)
			return
		}
		rest.Logger(request).WithField("member", username).Info("member removed")
		JSON.Ok(writer, map[string]string{"deleted": username})
	}
}
