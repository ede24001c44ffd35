package shows

import (
	"net/http"
	"strconv"

	"github.com/silktrader/onair/pkg/auth"
	"github.com/silktrader/onair/pkg/failure"
	JSON "github.com/silktrader/onair/pkg/json-utilities"
	"github.com/silktrader/onair/pkg/rest"
)

func RegisterHandlers(engine *rest.Engine, ss Storer) {
	engine.Get("/shows", getShows(ss))
	engine.Get("/shows/:id", getShow(ss))
	engine.Post("/shows", createShow(ss), auth.RequireAdmin())
	engine.Patch("/shows/:id", updateShow(ss), auth.RequireDJ())
	engine.Delete("/shows/:id", removeShow(ss), auth.RequireAdmin())
}

func getShows(ss Storer) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		var day *int
		if query := request.URL.Query().Get("dayOfWeek"); query != "" {
			parsed, err := strconv.Atoi(query)
			if err != nil {
				JSON.Error(writer, request, failure.BadRequest("dayOfWeek must be an integer from 0-6; 0 = Sun, 1 = Mon, etc."))
				return
			}
			day = &parsed
		}

		shows, err := ss.GetAll(request.Context(), day)
		if err != nil {
			JSON.Error(writer, request, err)
			return
		}
		JSON.Ok(writer, map[string]any{"shows": shows})
	}
}

func getShow(ss Storer) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		id, ok := rest.GetIDParam(request, "id")
		if !ok {
			JSON.NotFound(writer, "No show with ID: "+rest.GetParam(request, "id"))
			return
		}

		show, err := ss.Get(request.Context(), id)
		if err != nil {
			JSON.Error(writer, request, err)
			return
		}
		JSON.Ok(writer, map[string]any{"show": show})
	}
}

func createShow(ss Storer) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		data, err := JSON.DecodeValidate[NewShowData](request)
		if err != nil {
			JSON.ValidationError(writer, err)
			return
		}

		show, err := ss.Create(request.Context(), data)
		if err != nil {
			JSON.Error(writer, request, err)
			return
		}
		rest.Logger(request).WithField("show", show.ID).Info("show created")
		JSON.Created(writer, map[string]any{"show": show})
	}
}

// updateShow lets DJs edit the shows they host; only admins may edit any show or hand it to another DJ.
func updateShow(ss Storer) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		id, ok := rest.GetIDParam(request, "id")
		if !ok {
			JSON.NotFound(writer, "No show with ID: "+rest.GetParam(request, "id"))
			return
		}

		data, err := JSON.DecodeValidate[UpdateData](request)
		if err != nil {
			JSON.ValidationError(writer, err)
			return
		}

		var identity = auth.MustGetIdentity(request)
		if !identity.IsAdmin {
			if data.ReassignsDJ() {
				JSON.Forbidden(writer)
				return
			}
			hosted, err := ss.HostedBy(request.Context(), id, identity.MemberID)
			if err != nil {
				JSON.InternalServerError(writer, request, err)
				return
			}
			if !hosted {
				JSON.Forbidden(writer)
				return
			}
		}

		show, err := ss.Update(request.Context(), id, data)
		if err != nil {
			JSON.Error(writer, request, err)
			return
		}
		JSON.Ok(writer, map[string]any{"show": show})
	}
}

func removeShow(ss Storer) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		id, ok := rest.GetIDParam(request, "id")
		if !ok {
			JSON.NotFound(writer, "No show w/ ID: "+rest.GetParam(request, "id"))
			return
		}

		if err := ss.Remove(request.Context(), id); err != nil {
			JSON.Error(writer, request, err)
			return
		}
		rest.Logger(request).WithField("show", id).Info("show removed")
		JSON.Ok(writer, map[string]int64{"deleted": id})
	}
}
