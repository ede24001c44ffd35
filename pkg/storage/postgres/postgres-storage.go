package postgres

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

const schema = `
CREATE TABLE IF NOT EXISTS members (
	id BIGSERIAL PRIMARY KEY,
	username TEXT NOT NULL UNIQUE,
	password TEXT NOT NULL,
	first_name TEXT NOT NULL DEFAULT '',
	last_name TEXT NOT NULL DEFAULT '',
	email TEXT NOT NULL DEFAULT '',
	is_dj BOOLEAN NOT NULL DEFAULT FALSE,
	is_admin BOOLEAN NOT NULL DEFAULT FALSE,
	donated BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE TABLE IF NOT EXISTS shows (
	id BIGSERIAL PRIMARY KEY,
	dj_id BIGINT REFERENCES members (id) ON DELETE SET NULL,
	dj_name TEXT NOT NULL DEFAULT '',
	show_name TEXT NOT NULL UNIQUE,
	day_of_week INTEGER NOT NULL CHECK (day_of_week BETWEEN 0 AND 6),
	show_time TEXT NOT NULL,
	img_url TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	UNIQUE (day_of_week, show_time)
);

CREATE UNIQUE INDEX IF NOT EXISTS shows_host ON shows (dj_id);

CREATE TABLE IF NOT EXISTS playlists (
	id BIGSERIAL PRIMARY KEY,
	date TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS songs (
	id BIGSERIAL PRIMARY KEY,
	artist TEXT NOT NULL,
	title TEXT NOT NULL,
	album TEXT NOT NULL DEFAULT '',
	album_link TEXT NOT NULL DEFAULT '',
	album_image TEXT NOT NULL DEFAULT '',
	UNIQUE (artist, title, album)
);

CREATE TABLE IF NOT EXISTS show_playlists (
	id BIGSERIAL PRIMARY KEY,
	show_id BIGINT NOT NULL REFERENCES shows (id) ON DELETE CASCADE,
	playlist_id BIGINT NOT NULL REFERENCES playlists (id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS playlist_songs (
	id BIGSERIAL PRIMARY KEY,
	playlist_id BIGINT NOT NULL REFERENCES playlists (id) ON DELETE CASCADE,
	song_id BIGINT NOT NULL REFERENCES songs (id),
	song_order INTEGER NOT NULL CHECK (song_order >= 1),
	UNIQUE (playlist_id, song_order)
);

CREATE TABLE IF NOT EXISTS member_favorites (
	id BIGSERIAL PRIMARY KEY,
	member_id BIGINT NOT NULL REFERENCES members (id) ON DELETE CASCADE,
	show_id BIGINT NOT NULL REFERENCES shows (id) ON DELETE CASCADE,
	added TIMESTAMPTZ NOT NULL,
	UNIQUE (member_id, show_id)
);
`

// Open connects to the PostgreSQL server described by dsn and applies the schema.
func Open(logger logrus.FieldLogger, dsn string) (*sqlx.DB, error) {
	logger.Info("initialising PostgreSQL DB")

	connection, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if err = connection.Ping(); err != nil {
		_ = connection.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}
	if _, err = connection.Exec(schema); err != nil {
		logger.WithError(err).Error("error while building database schema")
		_ = connection.Close()
		return nil, err
	}
	return connection, nil
}
