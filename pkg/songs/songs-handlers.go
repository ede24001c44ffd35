package songs

import (
	"net/http"

	"github.com/silktrader/onair/pkg/auth"
	JSON "github.com/silktrader/onair/pkg/json-utilities"
	"github.com/silktrader/onair/pkg/playlists"
	"github.com/silktrader/onair/pkg/rest"
	"github.com/sirupsen/logrus"
)

// RegisterHandlers adds the song routes. Entries may only be added to or taken off the playlists of the
// requesting DJ, as reported by po.
func RegisterHandlers(engine *rest.Engine, ss Storer, po playlists.Owner) {
	engine.Get("/songs/:id", getSong(ss))
	engine.Post("/songs", addSong(ss, po), auth.RequireDJ())
	engine.Patch("/songs/:id", updateSong(ss), auth.RequireDJ())
	engine.Delete("/songs", removeSong(ss, po), auth.RequireDJ())
}

func getSong(ss Storer) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		id, ok := rest.GetIDParam(request, "id")
		if !ok {
			JSON.NotFound(writer, "No song with ID: "+rest.GetParam(request, "id"))
			return
		}

		song, err := ss.Get(request.Context(), id)
		if err != nil {
			JSON.Error(writer, request, err)
			return
		}
		JSON.Ok(writer, map[string]any{"song": song})
	}
}

func addSong(ss Storer, po playlists.Owner) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		data, err := JSON.DecodeValidate[NewSongData](request)
		if err != nil {
			JSON.ValidationError(writer, err)
			return
		}

		if !playlists.Mutable(writer, request, po, data.PlaylistID) {
			return
		}

		added, err := ss.Create(request.Context(), data)
		if err != nil {
			JSON.Error(writer, request, err)
			return
		}
		JSON.Created(writer, map[string]any{"songAdded": added})
	}
}

// updateSong edits a song on every playlist listing it, which is why any DJ may correct it.
func updateSong(ss Storer) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		id, ok := rest.GetIDParam(request, "id")
		if !ok {
			JSON.NotFound(writer, "No song with ID: "+rest.GetParam(request, "id"))
			return
		}

		data, err := JSON.DecodeValidate[UpdateData](request)
		if err != nil {
			JSON.ValidationError(writer, err)
			return
		}

		updated, err := ss.Update(request.Context(), id, data)
		if err != nil {
			JSON.Error(writer, request, err)
			return
		}
		rest.Logger(request).WithFields(logrus.Fields{
			"song":      id,
			"playlists": updated.Playlists,
		}).Info("song updated")
		JSON.Ok(writer, map[string]any{"songUpdated": updated})
	}
}

func removeSong(ss Storer, po playlists.Owner) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		data, err := JSON.DecodeValidate[RemoveData](request)
		if err != nil {
			JSON.ValidationError(writer, err)
			return
		}

		if !playlists.Mutable(writer, request, po, data.PlaylistID) {
			return
		}

		if err := ss.Remove(request.Context(), data); err != nil {
			JSON.Error(writer, request, err)
			return
		}
		JSON.Ok(writer, map[string]any{"deletedSongInfo": map[string]int64{
			"deletedSongID":         data.SongID,
			"playlistDeletedFromID": data.PlaylistID,
		}})
	}
}
