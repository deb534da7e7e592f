package repository

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
)

type listRepository struct {
	db *sql.DB
}

// NewListRepository creates a new list repository
func NewListRepository(db *sql.DB) ListRepository {
	return &listRepository{db: db}
}

// ListsForSubscriber returns the names of the public lists the
// subscriber belongs to, in list order.
func (r *listRepository) ListsForSubscriber(ctx context.Context, subscriberID int) ([]string, error) {
	query := `
		SELECT l.name
		FROM lists l
		JOIN list_subscribers ls ON ls.list_id = l.id
		WHERE ls.subscriber_id = $1 AND l.public
		ORDER BY l.id
	`

	rows, err := r.db.QueryContext(ctx, query, subscriberID)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to query lists for subscriber %d", subscriberID)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, errors.Wrap(err, "failed to scan list name")
		}
		names = append(names, name)
	}

	return names, errors.Wrap(rows.Err(), "failed to iterate lists")
}
