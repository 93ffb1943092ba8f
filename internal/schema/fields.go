package schema

import (
	"time"

	"metron/internal/domain/models"
)

// Null-coercion helpers: record values use nil for SQL NULL, concrete Go
// values otherwise.

func nullText(v any) *string {
	if v == nil {
		return nil
	}
	s := v.(string)
	return &s
}

func textOrNil(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func nullTime(v any) *time.Time {
	if v == nil {
		return nil
	}
	t := v.(time.Time)
	return &t
}

func timeOrNil(p *time.Time) any {
	if p == nil {
		return nil
	}
	return *p
}

func nullInt64(v any) *int64 {
	if v == nil {
		return nil
	}
	n := v.(int64)
	return &n
}

func int64OrNil(p *int64) any {
	if p == nil {
		return nil
	}
	return *p
}

func nullFloat(v any) *float64 {
	if v == nil {
		return nil
	}
	f := v.(float64)
	return &f
}

func floatOrNil(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}

// baseFields maps the shared identifier and row version.
func baseFields(base func(e any) *models.Base) []Field {
	return []Field{
		{Name: "id", Column: "id", Kind: KindInt64,
			Get: func(e any) any { return base(e).ID },
			Set: func(e any, v any) { base(e).ID = v.(int64) }},
		{Name: "rowVersion", Column: "row_version", Kind: KindInt64,
			Get: func(e any) any { return base(e).RowVersion },
			Set: func(e any, v any) { base(e).RowVersion = v.(int64) }},
	}
}

// auditFields maps the Auditable capability columns.
func auditFields(stamps func(e any) *models.AuditStamps) []Field {
	return []Field{
		{Name: "createdAt", Column: "created_at", Kind: KindTime,
			Get: func(e any) any { return stamps(e).CreatedAt },
			Set: func(e any, v any) { stamps(e).CreatedAt = v.(time.Time) }},
		{Name: "createdBy", Column: "created_by", Kind: KindText,
			Get: func(e any) any { return stamps(e).CreatedBy },
			Set: func(e any, v any) { stamps(e).CreatedBy = v.(string) }},
		{Name: "modifiedAt", Column: "modified_at", Kind: KindTime,
			Get: func(e any) any { return stamps(e).ModifiedAt },
			Set: func(e any, v any) { stamps(e).ModifiedAt = v.(time.Time) }},
		{Name: "modifiedBy", Column: "modified_by", Kind: KindText,
			Get: func(e any) any { return stamps(e).ModifiedBy },
			Set: func(e any, v any) { stamps(e).ModifiedBy = v.(string) }},
	}
}

// removalFields maps the SoftDeletable capability columns.
func removalFields(stamps func(e any) *models.RemovalStamps) []Field {
	return []Field{
		{Name: "isRemoved", Column: "is_removed", Kind: KindBool,
			Get: func(e any) any { return stamps(e).IsRemoved },
			Set: func(e any, v any) { stamps(e).IsRemoved = v.(bool) }},
		{Name: "removedAt", Column: "removed_at", Kind: KindNullTime,
			Get: func(e any) any { return timeOrNil(stamps(e).RemovedAt) },
			Set: func(e any, v any) { stamps(e).RemovedAt = nullTime(v) }},
		{Name: "removedBy", Column: "removed_by", Kind: KindNullText,
			Get: func(e any) any { return textOrNil(stamps(e).RemovedBy) },
			Set: func(e any, v any) { stamps(e).RemovedBy = nullText(v) }},
	}
}

// disableFields maps the Disableable capability columns.
func disableFields(stamps func(e any) *models.DisableStamps) []Field {
	return []Field{
		{Name: "isDisabled", Column: "is_disabled", Kind: KindBool,
			Get: func(e any) any { return stamps(e).IsDisabled },
			Set: func(e any, v any) { stamps(e).IsDisabled = v.(bool) }},
		{Name: "disabledAt", Column: "disabled_at", Kind: KindNullTime,
			Get: func(e any) any { return timeOrNil(stamps(e).DisabledAt) },
			Set: func(e any, v any) { stamps(e).DisabledAt = nullTime(v) }},
		{Name: "disabledBy", Column: "disabled_by", Kind: KindNullText,
			Get: func(e any) any { return textOrNil(stamps(e).DisabledBy) },
			Set: func(e any, v any) { stamps(e).DisabledBy = nullText(v) }},
	}
}
