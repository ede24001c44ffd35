package playlists

import (
	"context"
	"net/http"

	"github.com/silktrader/onair/pkg/auth"
	JSON "github.com/silktrader/onair/pkg/json-utilities"
	"github.com/silktrader/onair/pkg/rest"
)

func RegisterHandlers(engine *rest.Engine, ps Storer) {
	engine.Get("/playlists", getPlaylists(ps))
	engine.Get("/playlists/:id", getPlaylist(ps))
	engine.Post("/playlists", createPlaylist(ps), auth.RequireDJ())
	engine.Patch("/playlists/:id", updatePlaylist(ps), auth.RequireDJ())
	engine.Delete("/playlists/:id", removePlaylist(ps), auth.RequireAdmin())
}

func getPlaylists(ps Storer) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		playlists, err := ps.GetAll(request.Context())
		if err != nil {
			JSON.InternalServerError(writer, request, err)
			return
		}
		JSON.Ok(writer, map[string]any{"playlists": playlists})
	}
}

func getPlaylist(ps Storer) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		id, ok := rest.GetIDParam(request, "id")
		if !ok {
			JSON.NotFound(writer, "No playlist with ID: "+rest.GetParam(request, "id"))
			return
		}

		playlist, err := ps.Get(request.Context(), id)
		if err != nil {
			JSON.Error(writer, request, err)
			return
		}
		JSON.Ok(writer, map[string]any{"playlist": playlist})
	}
}

// createPlaylist files the playlist under the requesting DJ's show. Admins may file it for another DJ.
func createPlaylist(ps Storer) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		data, err := JSON.DecodeValidate[NewPlaylistData](request)
		if err != nil {
			JSON.ValidationError(writer, err)
			return
		}

		var identity = auth.MustGetIdentity(request)
		if data.MemberID == nil || !identity.IsAdmin {
			data.MemberID = &identity.MemberID
		}

		playlist, err := ps.Create(request.Context(), data)
		if err != nil {
			JSON.Error(writer, request, err)
			return
		}
		rest.Logger(request).WithField("playlist", playlist.ID).Info("playlist created")
		JSON.Created(writer, map[string]any{"playlist": playlist})
	}
}

func updatePlaylist(ps Storer) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		id, ok := rest.GetIDParam(request, "id")
		if !ok {
			JSON.NotFound(writer, "No playlist with ID: "+rest.GetParam(request, "id"))
			return
		}

		data, err := JSON.DecodeValidate[UpdateData](request)
		if err != nil {
			JSON.ValidationError(writer, err)
			return
		}

		if !Mutable(writer, request, ps, id) {
			return
		}

		playlist, err := ps.Update(request.Context(), id, data)
		if err != nil {
			JSON.Error(writer, request, err)
			return
		}
		JSON.Ok(writer, map[string]any{"playlist": playlist})
	}
}

func removePlaylist(ps Storer) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		id, ok := rest.GetIDParam(request, "id")
		if !ok {
			JSON.NotFound(writer, "No playlist w/ ID: "+rest.GetParam(request, "id"))
			return
		}

		if err := ps.Remove(request.Context(), id); err != nil {
			JSON.Error(writer, request, err)
			return
		}
		rest.Logger(request).WithField("playlist", id).Info("playlist removed")
		JSON.Ok(writer, map[string]int64{"deleted": id})
	}
}

// Owner reports on playlist ownership, see Store.OwnedBy.
type Owner interface {
	OwnedBy(ctx context.Context, id, memberID int64) (bool, error)
}

// Mutable reports whether the request's identity may change the playlist, answering the request when it
// may not. Admins may change any playlist, DJs only those of the shows they host.
func Mutable(writer http.ResponseWriter, request *http.Request, po Owner, playlistID int64) bool {
	var identity = auth.MustGetIdentity(request)
	if identity.IsAdmin {
		return true
	}

	owned, err := po.OwnedBy(request.Context(), playlistID, identity.MemberID)
	if err != nil {
		JSON.InternalServerError(writer, request, err)
		return false
	}
	if !owned {
		JSON.Forbidden(writer)
		return false
	}
	return true
}
