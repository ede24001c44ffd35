package favorites

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/silktrader/onair/pkg/failure"
	"github.com/silktrader/onair/pkg/integrity"
	"github.com/silktrader/onair/pkg/ntime"
	"github.com/silktrader/onair/pkg/storage"
)

type Storer interface {
	Create(ctx context.Context, data Data) (Favorite, error)
	Get(ctx context.Context, memberID int64) ([]FavoriteShow, error)
	Remove(ctx context.Context, data Data) error
}

type Store struct {
	db *sqlx.DB
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{db}
}

// Create records that the member favorited the show. Both must exist and a show is favorited once.
func (fs *Store) Create(ctx context.Context, data Data) (favorite Favorite, err error) {
	err = storage.Transact(ctx, fs.db, func(tx *sqlx.Tx) error {
		if err := integrity.MemberExists(ctx, tx, data.MemberID); err != nil {
			return err
		}
		if err := integrity.ShowExists(ctx, tx, data.ShowID); err != nil {
			return err
		}
		if err := integrity.NotFavorited(ctx, tx, data.MemberID, data.ShowID); err != nil {
			return err
		}

		return tx.GetContext(ctx, &favorite, `
			INSERT INTO member_favorites (member_id, show_id, added)
			VALUES ($1, $2, $3)
			RETURNING id, member_id, show_id, added`,
			data.MemberID, data.ShowID, ntime.Now())
	})
	if err != nil {
		return Favorite{}, fmt.Errorf("favoriting show %d for member %d: %w", data.ShowID, data.MemberID, err)
	}
	return favorite, nil
}

// Get lists the shows favorited by the member, most recent first. Unknown members have no favorites.
func (fs *Store) Get(ctx context.Context, memberID int64) ([]FavoriteShow, error) {
	var all = make([]FavoriteShow, 0)
	err := fs.db.SelectContext(ctx, &all,
		`SELECT show_id FROM member_favorites WHERE member_id = $1 ORDER BY added DESC, id DESC`, memberID)
	if err != nil {
		return nil, fmt.Errorf("listing favorites of member %d: %w", memberID, err)
	}
	return all, nil
}

func (fs *Store) Remove(ctx context.Context, data Data) error {
	var deleted int64
	err := fs.db.GetContext(ctx, &deleted,
		`DELETE FROM member_favorites WHERE member_id = $1 AND show_id = $2 RETURNING id`,
		data.MemberID, data.ShowID)
	if errors.Is(err, sql.ErrNoRows) {
		return failure.NotFound("No member/show combo w/ IDs: %d/%d", data.MemberID, data.ShowID)
	}
	if err != nil {
		return fmt.Errorf("removing favorite %d/%d: %w", data.MemberID, data.ShowID, err)
	}
	return nil
}
