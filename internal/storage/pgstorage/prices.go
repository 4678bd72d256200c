package pgstorage

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/kedr891/wishlist-tracker/internal/entity"
)

var observationColumns = []string{"id", "item_id", "price", "recorded_at"}

func (s *Storage) AppendObservation(ctx context.Context, obs *entity.PriceObservation) error {
	qb := s.builder.
		Insert(observationsTable).
		Columns(observationColumns...).
		Values(obs.ID, obs.ItemID, obs.Price, obs.RecordedAt)

	if _, err := s.exec(ctx, qb); err != nil {
		return fmt.Errorf("append price observation: %w", err)
	}

	return nil
}

func (s *Storage) ListObservations(ctx context.Context, itemID uuid.UUID) ([]entity.PriceObservation, error) {
	rows, err := s.query(ctx, listObservationsQuery(s.builder, itemID))
	if err != nil {
		return nil, fmt.Errorf("list price observations: %w", err)
	}
	defer rows.Close()

	history := make([]entity.PriceObservation, 0)
	for rows.Next() {
		var obs entity.PriceObservation
		if err := rows.Scan(&obs.ID, &obs.ItemID, &obs.Price, &obs.RecordedAt); err != nil {
			return nil, fmt.Errorf("scan price observation: %w", classify(err))
		}
		history = append(history, obs)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate price observations: %w", classify(err))
	}

	return history, nil
}

// seq breaks ties between observations recorded at the same instant.
func listObservationsQuery(b squirrel.StatementBuilderType, itemID uuid.UUID) squirrel.SelectBuilder {
	return b.Select(observationColumns...).
		From(observationsTable).
		Where(squirrel.Eq{"item_id": itemID}).
		OrderBy("recorded_at DESC", "seq DESC")
}
