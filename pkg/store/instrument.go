package store

import (
	"context"
	"time"

	errs "github.com/matzehuels/pairtree/pkg/errors"
	"github.com/matzehuels/pairtree/pkg/observability"
)

// Instrument wraps s so that tree names are validated before they reach the
// backend and every operation is reported to the registered store hooks
// under the given backend name.
func Instrument(backend string, s Store) Store {
	return &instrumented{backend: backend, inner: s}
}

type instrumented struct {
	backend string
	inner   Store
}

func (s *instrumented) report(ctx context.Context, op string, records int, start time.Time, err error) {
	observability.Store().OnStoreOp(ctx, s.backend, op, records, time.Since(start), err)
}

func (s *instrumented) Save(ctx context.Context, name string, records []Record) (err error) {
	if err := errs.ValidateTreeName(name); err != nil {
		return err
	}
	start := time.Now()
	defer func() { s.report(ctx, "save", len(records), start, err) }()
	return s.inner.Save(ctx, name, records)
}

func (s *instrumented) Load(ctx context.Context, name string) (records []Record, err error) {
	if err := errs.ValidateTreeName(name); err != nil {
		return nil, err
	}
	start := time.Now()
	defer func() { s.report(ctx, "load", len(records), start, err) }()
	return s.inner.Load(ctx, name)
}

func (s *instrumented) Delete(ctx context.Context, name string) (err error) {
	if err := errs.ValidateTreeName(name); err != nil {
		return err
	}
	start := time.Now()
	defer func() { s.report(ctx, "delete", 0, start, err) }()
	return s.inner.Delete(ctx, name)
}

func (s *instrumented) List(ctx context.Context) (names []string, err error) {
	start := time.Now()
	defer func() { s.report(ctx, "list", len(names), start, err) }()
	return s.inner.List(ctx)
}

func (s *instrumented) Close(ctx context.Context) error {
	return s.inner.Close(ctx)
}
