// Package repository implements session-scoped data access: a generic
// repository per entity type, a unit of work that stages changes and commits
// them as one atomic batch, and the lifecycle interceptor that stamps audit,
// removal and disablement fields at commit time.
package repository

import (
	"fmt"
	"time"

	"metron/internal/schema"
	"metron/internal/storage"
)

// materialize builds an entity from a storage record. Driver values are
// coerced per field kind; the postgres driver surfaces INTEGER columns as
// int32 and the memory driver returns whatever was stored.
func materialize(desc *schema.Descriptor, rec storage.Record) (any, error) {
	e := desc.New()
	for i := range desc.Fields {
		f := &desc.Fields[i]
		v, err := coerce(f.Kind, rec[f.Column])
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", desc.Entity, f.Name, err)
		}
		f.Set(e, v)
	}
	return e, nil
}

// dematerialize builds the storage record from an entity.
func dematerialize(desc *schema.Descriptor, e any) storage.Record {
	rec := make(storage.Record, len(desc.Fields))
	for i := range desc.Fields {
		f := &desc.Fields[i]
		rec[f.Column] = f.Get(e)
	}
	return rec
}

func coerce(kind schema.Kind, v any) (any, error) {
	switch kind {
	case schema.KindInt64:
		return toInt64(v)
	case schema.KindInt:
		n, err := toInt64(v)
		if err != nil {
			return nil, err
		}
		return int(n.(int64)), nil
	case schema.KindText:
		if s, ok := v.(string); ok {
			return s, nil
		}
	case schema.KindBool:
		if b, ok := v.(bool); ok {
			return b, nil
		}
	case schema.KindTime:
		if t, ok := v.(time.Time); ok {
			return t, nil
		}
	case schema.KindNullText:
		if v == nil {
			return nil, nil
		}
		if s, ok := v.(string); ok {
			return s, nil
		}
	case schema.KindNullTime:
		if v == nil {
			return nil, nil
		}
		if t, ok := v.(time.Time); ok {
			return t, nil
		}
	case schema.KindNullInt64:
		if v == nil {
			return nil, nil
		}
		return toInt64(v)
	case schema.KindNullFloat:
		if v == nil {
			return nil, nil
		}
		switch f := v.(type) {
		case float64:
			return f, nil
		case float32:
			return float64(f), nil
		}
	}
	return nil, fmt.Errorf("unexpected value %T for kind %d", v, kind)
}

func toInt64(v any) (any, error) {
	switch n := v.(type) {
	case int64:
		return n, nil
	case int32:
		return int64(n), nil
	case int:
		return int64(n), nil
	}
	return nil, fmt.Errorf("unexpected value %T for integer field", v)
}
