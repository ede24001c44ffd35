package favorites

import (
	"net/http"

	"github.com/silktrader/onair/pkg/auth"
	JSON "github.com/silktrader/onair/pkg/json-utilities"
	"github.com/silktrader/onair/pkg/rest"
)

func RegisterHandlers(engine *rest.Engine, fs Storer) {
	engine.Get("/favorites/:memberID", getFavorites(fs))
	engine.Post("/favorites", addFavorite(fs), auth.RequireMember())
	engine.Delete("/favorites", removeFavorite(fs), auth.RequireMember())
}

func getFavorites(fs Storer) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		memberID, ok := rest.GetIDParam(request, "memberID")
		if !ok {
			JSON.NotFound(writer, "No member with ID: "+rest.GetParam(request, "memberID"))
			return
		}

		favorites, err := fs.Get(request.Context(), memberID)
		if err != nil {
			JSON.InternalServerError(writer, request, err)
			return
		}
		JSON.Ok(writer, map[string]any{"memberFavorites": favorites})
	}
}

// addFavorite lets members favorite shows for themselves; admins may do so on anyone's behalf.
func addFavorite(fs Storer) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		data, err := JSON.DecodeValidate[Data](request)
		if err != nil {
			JSON.ValidationError(writer, err)
			return
		}

		if !auth.CanActAs(request, data.MemberID) {
			JSON.Unauthorised(writer)
			return
		}

		favorite, err := fs.Create(request.Context(), data)
		if err != nil {
			JSON.Error(writer, request, err)
			return
		}
		JSON.Created(writer, map[string]any{"favorite": favorite})
	}
}

func removeFavorite(fs Storer) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		data, err := JSON.DecodeValidate[Data](request)
		if err != nil {
			JSON.ValidationError(writer, err)
			return
		}

		if !auth.CanActAs(request, data.MemberID) {
			JSON.Unauthorised(writer)
			return
		}

		if err := fs.Remove(request.Context(), data); err != nil {
			JSON.Error(writer, request, err)
			return
		}
		JSON.Ok(writer, map[string]any{"deleted": data})
	}
}
