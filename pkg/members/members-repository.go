package members

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/silktrader/onair/pkg/auth"
	"github.com/silktrader/onair/pkg/failure"
	"github.com/silktrader/onair/pkg/integrity"
	"github.com/silktrader/onair/pkg/sqlpatch"
	"github.com/silktrader/onair/pkg/storage"
)

type Storer interface {
	Register(ctx context.Context, data RegisterData) (Member, error)
	Authenticate(ctx context.Context, username, password string) (Member, error)
	GetAll(ctx context.Context) ([]Member, error)
	Get(ctx context.Context, username string) (Details, error)
	Update(ctx context.Context, username string, data UpdateData) (Member, error)
	Remove(ctx context.Context, username string) error
	MemberRoles(ctx context.Context, id int64) (auth.Roles, bool)
}

const memberColumns = `id, username, first_name, last_name, email, is_dj, is_admin, donated`

type Store struct {
	db     *sqlx.DB
	hasher auth.Hasher

	// compared against when the username is unknown, so that failures take as long as wrong passwords
	decoyHash string
}

// NewStore fails when the hasher can't produce the decoy hash.
func NewStore(db *sqlx.DB, hasher auth.Hasher) (*Store, error) {
	decoy, err := hasher.Hash("decoy password")
	if err != nil {
		return nil, fmt.Errorf("hashing the decoy password: %w", err)
	}
	return &Store{db: db, hasher: hasher, decoyHash: decoy}, nil
}

// invalidCredentials is the one error for unknown usernames and wrong passwords alike.
func invalidCredentials() error {
	return failure.Unauthorized("Invalid username/password")
}

// Authenticate returns the member matching the credentials. Unknown usernames and wrong passwords can't be
// told apart.
func (ms *Store) Authenticate(ctx context.Context, username, password string) (Member, error) {
	var row credentials
	err := ms.db.GetContext(ctx, &row,
		`SELECT `+memberColumns+`, password FROM members WHERE username = $1`, username)
	if errors.Is(err, sql.ErrNoRows) {
		ms.hasher.Verify(password, ms.decoyHash)
		return Member{}, invalidCredentials()
	}
	if err != nil {
		return Member{}, fmt.Errorf("authenticating %q: %w", username, err)
	}

	if !ms.hasher.Verify(password, row.Password) {
		return Member{}, invalidCredentials()
	}
	return row.Member, nil
}

// Register adds a member after ensuring the username is free.
func (ms *Store) Register(ctx context.Context, data RegisterData) (member Member, err error) {
	hashed, err := ms.hasher.Hash(data.Password)
	if err != nil {
		return member, err
	}

	err = storage.Transact(ctx, ms.db, func(tx *sqlx.Tx) error {
		if err := integrity.UsernameFree(ctx, tx, data.Username); err != nil {
			return err
		}
		return tx.GetContext(ctx, &member, `
			INSERT INTO members (username, password, first_name, last_name, email, is_dj, is_admin, donated)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING `+memberColumns,
			data.Username, hashed, data.FirstName, data.LastName, data.Email, data.IsDJ, data.IsAdmin, data.Donated)
	})
	if err != nil {
		return Member{}, fmt.Errorf("registering %q: %w", data.Username, err)
	}
	return member, nil
}

func (ms *Store) GetAll(ctx context.Context) ([]Member, error) {
	// initialise empty slice to avoid null serialisation
	var all = make([]Member, 0)
	if err := ms.db.SelectContext(ctx, &all, `SELECT `+memberColumns+` FROM members ORDER BY username`); err != nil {
		return nil, fmt.Errorf("listing members: %w", err)
	}
	return all, nil
}

// Get returns the member along with the ID of the show they host, if any.
func (ms *Store) Get(ctx context.Context, username string) (Details, error) {
	var details Details
	err := ms.db.GetContext(ctx, &details.Member, `SELECT `+memberColumns+` FROM members WHERE username = $1`, username)
	if errors.Is(err, sql.ErrNoRows) {
		return details, failure.NotFound("No user: %s", username)
	}
	if err != nil {
		return details, fmt.Errorf("getting member %q: %w", username, err)
	}

	if details.ShowID, err = integrity.MemberShow(ctx, ms.db, details.ID); err != nil {
		return details, err
	}
	return details, nil
}

// Update partially updates the member. A new password is hashed before storage and the returned member never
// carries it.
//
// WARNING: this function can set a new password or make a user an admin. Callers must be certain they have
// authorised the change.
func (ms *Store) Update(ctx context.Context, username string, data UpdateData) (Member, error) {
	var patch = data.patch()
	if plain, found := patch.Get("password"); found {
		hashed, err := ms.hasher.Hash(plain.(string))
		if err != nil {
			return Member{}, err
		}
		patch.Set("password", hashed)
	}

	assignments, err := sqlpatch.Build(patch, updateColumns)
	if err != nil {
		return Member{}, err
	}

	var member Member
	err = ms.db.GetContext(ctx, &member,
		`UPDATE members SET `+assignments.SetCols+` WHERE username = `+assignments.Next()+` RETURNING `+memberColumns,
		assignments.Args(username)...)
	if errors.Is(err, sql.ErrNoRows) {
		return Member{}, failure.NotFound("No user: %s", username)
	}
	if err != nil {
		return Member{}, fmt.Errorf("updating member %q: %w", username, err)
	}
	return member, nil
}

// Remove deletes the member along with their favorites. Shows they host are kept, without a DJ.
func (ms *Store) Remove(ctx context.Context, username string) error {
	return storage.Transact(ctx, ms.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			DELETE FROM member_favorites WHERE member_id IN (SELECT id FROM members WHERE username = $1)`,
			username); err != nil {
			return fmt.Errorf("removing favorites of %q: %w", username, err)
		}
		if _, err := tx.ExecContext(ctx, `
			UPDATE shows SET dj_id = NULL WHERE dj_id IN (SELECT id FROM members WHERE username = $1)`,
			username); err != nil {
			return fmt.Errorf("detaching shows of %q: %w", username, err)
		}

		var id int64
		err := tx.GetContext(ctx, &id, `DELETE FROM members WHERE username = $1 RETURNING id`, username)
		if errors.Is(err, sql.ErrNoRows) {
			return failure.NotFound("No user: %s", username)
		}
		if err != nil {
			return fmt.Errorf("removing member %q: %w", username, err)
		}
		return nil
	})
}

// MemberRoles reads the member's current roles. Lookup failures are reported as a missing member.
func (ms *Store) MemberRoles(ctx context.Context, id int64) (auth.Roles, bool) {
	var roles auth.Roles
	err := ms.db.GetContext(ctx, &roles, `SELECT is_dj, is_admin FROM members WHERE id = $1`, id)
	return roles, err == nil
}
