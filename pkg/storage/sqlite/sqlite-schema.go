package sqlite

const schema = `
BEGIN TRANSACTION;

CREATE TABLE
	IF NOT EXISTS members (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL CHECK (length ("username") >= 1 AND length ("username") <= 30),
		password TEXT NOT NULL,
		first_name TEXT NOT NULL DEFAULT '',
		last_name TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT '',
		is_dj BOOLEAN NOT NULL DEFAULT FALSE,
		is_admin BOOLEAN NOT NULL DEFAULT FALSE,
		donated BOOLEAN NOT NULL DEFAULT FALSE
	);

CREATE UNIQUE INDEX IF NOT EXISTS "Username Index" ON "members" ("username" ASC);

CREATE TABLE
	IF NOT EXISTS shows (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		dj_id INTEGER,
		dj_name TEXT NOT NULL DEFAULT '',
		show_name TEXT NOT NULL,
		day_of_week INTEGER NOT NULL CHECK (day_of_week >= 0 AND day_of_week <= 6),
		show_time TEXT NOT NULL,
		img_url TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		FOREIGN KEY (dj_id) REFERENCES members (id) ON DELETE SET NULL
	);

CREATE UNIQUE INDEX IF NOT EXISTS "Show Name Index" ON "shows" ("show_name" ASC);
CREATE UNIQUE INDEX IF NOT EXISTS "Show Slot Index" ON "shows" ("day_of_week", "show_time");
CREATE UNIQUE INDEX IF NOT EXISTS "Show Host Index" ON "shows" ("dj_id");

CREATE TABLE
	IF NOT EXISTS playlists (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		date TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT ''
	);

CREATE TABLE
	IF NOT EXISTS songs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		artist TEXT NOT NULL,
		title TEXT NOT NULL,
		album TEXT NOT NULL DEFAULT '',
		album_link TEXT NOT NULL DEFAULT '',
		album_image TEXT NOT NULL DEFAULT ''
	);

CREATE UNIQUE INDEX IF NOT EXISTS "Song Identity Index" ON "songs" ("artist", "title", "album");

CREATE TABLE
	IF NOT EXISTS show_playlists (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		show_id INTEGER NOT NULL,
		playlist_id INTEGER NOT NULL,
		FOREIGN KEY (show_id) REFERENCES shows (id) ON DELETE CASCADE,
		FOREIGN KEY (playlist_id) REFERENCES playlists (id) ON DELETE CASCADE
	);

CREATE TABLE
	IF NOT EXISTS playlist_songs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		playlist_id INTEGER NOT NULL,
		song_id INTEGER NOT NULL,
		song_order INTEGER NOT NULL CHECK (song_order >= 1),
		FOREIGN KEY (playlist_id) REFERENCES playlists (id) ON DELETE CASCADE,
		FOREIGN KEY (song_id) REFERENCES songs (id)
	);

CREATE UNIQUE INDEX IF NOT EXISTS "Song Order Index" ON "playlist_songs" ("playlist_id", "song_order");

CREATE TABLE
	IF NOT EXISTS member_favorites (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		member_id INTEGER NOT NULL,
		show_id INTEGER NOT NULL,
		added datetime NOT NULL,
		FOREIGN KEY (member_id) REFERENCES members (id) ON DELETE CASCADE,
		FOREIGN KEY (show_id) REFERENCES shows (id) ON DELETE CASCADE
	);

CREATE UNIQUE INDEX IF NOT EXISTS "Favorite Index" ON "member_favorites" ("member_id", "show_id");

COMMIT;
`
