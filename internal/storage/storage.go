package storage

import (
	"context"
	"errors"

	"reserveScope/internal/model"
)

// Storage is a sink for reserve snapshots.
type Storage interface {
	PutSnapshots(ctx context.Context, snapshots []model.ReserveSnapshot) error
	Close() error
}

// Multi writes every batch to each sink in order and stops at the first failure.
type Multi []Storage

func (m Multi) PutSnapshots(ctx context.Context, snapshots []model.ReserveSnapshot) error {
	for _, sink := range m {
		if err := sink.PutSnapshots(ctx, snapshots); err != nil {
			return err
		}
	}
	return nil
}

// Close closes every sink and joins their errors.
func (m Multi) Close() error {
	var errs []error
	for _, sink := range m {
		if err := sink.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
