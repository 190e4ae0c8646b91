// Package seed supplies the fixture records a catalog store starts with.
package seed

import (
	"context"
	"errors"
	"fmt"

	"HeroCatalog/internal/hero"
)

const (
	KindBuiltin = "builtin"
	KindYAML    = "yaml"
	KindSQL     = "sql"
)

var (
	ErrUnknownSource = errors.New("unknown seed source")
	ErrInvalidRecord = errors.New("invalid seed record")
)

type Source struct {
	Kind   string `mapstructure:"source"`
	Path   string `mapstructure:"path"`
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

func Load(ctx context.Context, src Source) ([]hero.Hero, error) {
	switch src.Kind {
	case "", KindBuiltin:
		return Builtin(), nil
	case KindYAML:
		return FromYAMLFile(src.Path)
	case KindSQL:
		db, err := OpenSQL(ctx, src.Driver, src.DSN)
		if err != nil {
			return nil, err
		}
		defer func() { _ = db.Close() }()
		return FromSQL(ctx, db)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSource, src.Kind)
	}
}

func validate(hs []hero.Hero) error {
	for i, h := range hs {
		if err := h.Draft().Validate(); err != nil {
			return fmt.Errorf("%w: record %d (id %q): %v", ErrInvalidRecord, i, h.ID, err)
		}
	}
	return nil
}
