package jsonl

import (
	"context"
	"errors"

	"github.com/agenthands/edgeqc/internal/core/model"
)

// Sink receives classified edges in input order.
type Sink interface {
	Write(ctx context.Context, rec model.ClassifiedEdge) error
	Close(ctx context.Context) error
}

// MultiSink fans each record out to every sink in order.
type MultiSink []Sink

func (m MultiSink) Write(ctx context.Context, rec model.ClassifiedEdge) error {
	for _, s := range m {
		if err := s.Write(ctx, rec); err != nil {
			return err
		}
	}
	return nil
}

func (m MultiSink) Close(ctx context.Context) error {
	var errs []error
	for _, s := range m {
		if err := s.Close(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
