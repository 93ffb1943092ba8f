package schema

import (
	"time"

	"metron/internal/domain/models"
)

func concat(parts ...[]Field) []Field {
	var out []Field
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// Locations describes the location entity.
var Locations = (&Descriptor{
	Entity: "location",
	Table:  "location",
	Fields: concat(
		baseFields(func(e any) *models.Base { return &e.(*models.Location).Base }),
		[]Field{
			{Name: "name", Column: "name", Kind: KindText,
				Get: func(e any) any { return e.(*models.Location).Name },
				Set: func(e any, v any) { e.(*models.Location).Name = v.(string) }},
		},
		auditFields(func(e any) *models.AuditStamps { return &e.(*models.Location).AuditStamps }),
		removalFields(func(e any) *models.RemovalStamps { return &e.(*models.Location).RemovalStamps }),
	),
	Searchable: []string{"name"},
	Navigations: []Navigation{
		{Name: "devices", Kind: NavChildren, Target: target("device"),
			FK: "location_id", OrderField: "id",
			Assign: func(parent any, related []any) {
				l := parent.(*models.Location)
				l.Devices = make([]*models.Device, len(related))
				for i, r := range related {
					l.Devices[i] = r.(*models.Device)
				}
			}},
	},
	New: func() any { return &models.Location{} },
}).build()

// Suppliers describes the supplier entity.
var Suppliers = (&Descriptor{
	Entity: "supplier",
	Table:  "supplier",
	Fields: concat(
		baseFields(func(e any) *models.Base { return &e.(*models.Supplier).Base }),
		[]Field{
			{Name: "name", Column: "name", Kind: KindText,
				Get: func(e any) any { return e.(*models.Supplier).Name },
				Set: func(e any, v any) { e.(*models.Supplier).Name = v.(string) }},
			{Name: "contact", Column: "contact", Kind: KindNullText,
				Get: func(e any) any { return textOrNil(e.(*models.Supplier).Contact) },
				Set: func(e any, v any) { e.(*models.Supplier).Contact = nullText(v) }},
		},
		auditFields(func(e any) *models.AuditStamps { return &e.(*models.Supplier).AuditStamps }),
		removalFields(func(e any) *models.RemovalStamps { return &e.(*models.Supplier).RemovalStamps }),
	),
	Searchable: []string{"name", "contact"},
	Navigations: []Navigation{
		{Name: "cards", Kind: NavChildren, Target: target("deviceCard"),
			FK: "supplier_id", OrderField: "id",
			Assign: func(parent any, related []any) {
				s := parent.(*models.Supplier)
				s.Cards = make([]*models.DeviceCard, len(related))
				for i, r := range related {
					s.Cards[i] = r.(*models.DeviceCard)
				}
			}},
	},
	New: func() any { return &models.Supplier{} },
}).build()

// ServiceProviders describes the service-provider entity.
var ServiceProviders = (&Descriptor{
	Entity: "serviceProvider",
	Table:  "service_provider",
	Fields: concat(
		baseFields(func(e any) *models.Base { return &e.(*models.ServiceProvider).Base }),
		[]Field{
			{Name: "name", Column: "name", Kind: KindText,
				Get: func(e any) any { return e.(*models.ServiceProvider).Name },
				Set: func(e any, v any) { e.(*models.ServiceProvider).Name = v.(string) }},
			{Name: "contact", Column: "contact", Kind: KindNullText,
				Get: func(e any) any { return textOrNil(e.(*models.ServiceProvider).Contact) },
				Set: func(e any, v any) { e.(*models.ServiceProvider).Contact = nullText(v) }},
		},
		auditFields(func(e any) *models.AuditStamps { return &e.(*models.ServiceProvider).AuditStamps }),
		removalFields(func(e any) *models.RemovalStamps { return &e.(*models.ServiceProvider).RemovalStamps }),
	),
	Searchable: []string{"name", "contact"},
	Navigations: []Navigation{
		{Name: "cards", Kind: NavChildren, Target: target("deviceCard"),
			FK: "service_provider_id", OrderField: "id",
			Assign: func(parent any, related []any) {
				s := parent.(*models.ServiceProvider)
				s.Cards = make([]*models.DeviceCard, len(related))
				for i, r := range related {
					s.Cards[i] = r.(*models.DeviceCard)
				}
			}},
	},
	New: func() any { return &models.ServiceProvider{} },
}).build()

// MetConfirmations describes the calibration-confirmation entity.
var MetConfirmations = (&Descriptor{
	Entity: "metConfirmation",
	Table:  "met_confirmation",
	Fields: concat(
		baseFields(func(e any) *models.Base { return &e.(*models.MetConfirmation).Base }),
		[]Field{
			{Name: "name", Column: "name", Kind: KindText,
				Get: func(e any) any { return e.(*models.MetConfirmation).Name },
				Set: func(e any, v any) { e.(*models.MetConfirmation).Name = v.(string) }},
			{Name: "lvl1", Column: "lvl1", Kind: KindText,
				Get: func(e any) any { return e.(*models.MetConfirmation).Lvl1 },
				Set: func(e any, v any) { e.(*models.MetConfirmation).Lvl1 = v.(string) }},
			{Name: "lvl2", Column: "lvl2", Kind: KindNullText,
				Get: func(e any) any { return textOrNil(e.(*models.MetConfirmation).Lvl2) },
				Set: func(e any, v any) { e.(*models.MetConfirmation).Lvl2 = nullText(v) }},
			{Name: "lvl3", Column: "lvl3", Kind: KindNullText,
				Get: func(e any) any { return textOrNil(e.(*models.MetConfirmation).Lvl3) },
				Set: func(e any, v any) { e.(*models.MetConfirmation).Lvl3 = nullText(v) }},
			{Name: "lvl4", Column: "lvl4", Kind: KindNullText,
				Get: func(e any) any { return textOrNil(e.(*models.MetConfirmation).Lvl4) },
				Set: func(e any, v any) { e.(*models.MetConfirmation).Lvl4 = nullText(v) }},
		},
		auditFields(func(e any) *models.AuditStamps { return &e.(*models.MetConfirmation).AuditStamps }),
		removalFields(func(e any) *models.RemovalStamps { return &e.(*models.MetConfirmation).RemovalStamps }),
	),
	Searchable: []string{"name", "lvl1"},
	Navigations: []Navigation{
		{Name: "cards", Kind: NavChildren, Target: target("deviceCard"),
			FK: "met_confirmation_id", OrderField: "id",
			Assign: func(parent any, related []any) {
				m := parent.(*models.MetConfirmation)
				m.Cards = make([]*models.DeviceCard, len(related))
				for i, r := range related {
					m.Cards[i] = r.(*models.DeviceCard)
				}
			}},
	},
	New: func() any { return &models.MetConfirmation{} },
}).build()

// Devices describes the device entity.
var Devices = (&Descriptor{
	Entity: "device",
	Table:  "device",
	Fields: concat(
		baseFields(func(e any) *models.Base { return &e.(*models.Device).Base }),
		[]Field{
			{Name: "name", Column: "name", Kind: KindText,
				Get: func(e any) any { return e.(*models.Device).Name },
				Set: func(e any, v any) { e.(*models.Device).Name = v.(string) }},
			{Name: "locationId", Column: "location_id", Kind: KindNullInt64,
				Get: func(e any) any { return int64OrNil(e.(*models.Device).LocationID) },
				Set: func(e any, v any) { e.(*models.Device).LocationID = nullInt64(v) }},
		},
		auditFields(func(e any) *models.AuditStamps { return &e.(*models.Device).AuditStamps }),
		removalFields(func(e any) *models.RemovalStamps { return &e.(*models.Device).RemovalStamps }),
		disableFields(func(e any) *models.DisableStamps { return &e.(*models.Device).DisableStamps }),
	),
	Searchable: []string{"name"},
	Navigations: []Navigation{
		{Name: "location", Kind: NavRef, Target: target("location"),
			FK: "location_id",
			Assign: func(parent any, related []any) {
				d := parent.(*models.Device)
				if len(related) > 0 {
					d.Location = related[0].(*models.Location)
				}
			}},
		{Name: "card", Kind: NavChild, Target: target("deviceCard"),
			FK: "device_id",
			Assign: func(parent any, related []any) {
				d := parent.(*models.Device)
				if len(related) > 0 {
					d.Card = related[0].(*models.DeviceCard)
				}
			}},
	},
	New: func() any { return &models.Device{} },
}).build()

// DeviceCards describes the installed-unit card entity.
var DeviceCards = (&Descriptor{
	Entity: "deviceCard",
	Table:  "device_card",
	Fields: concat(
		baseFields(func(e any) *models.Base { return &e.(*models.DeviceCard).Base }),
		[]Field{
			{Name: "deviceId", Column: "device_id", Kind: KindInt64,
				Get: func(e any) any { return e.(*models.DeviceCard).DeviceID },
				Set: func(e any, v any) { e.(*models.DeviceCard).DeviceID = v.(int64) }},
			{Name: "serialNumber", Column: "serial_number", Kind: KindText,
				Get: func(e any) any { return e.(*models.DeviceCard).SerialNumber },
				Set: func(e any, v any) { e.(*models.DeviceCard).SerialNumber = v.(string) }},
			{Name: "activationDate", Column: "activation_date", Kind: KindTime,
				Get: func(e any) any { return e.(*models.DeviceCard).ActivationDate },
				Set: func(e any, v any) { e.(*models.DeviceCard).ActivationDate = v.(time.Time) }},
			{Name: "supplierId", Column: "supplier_id", Kind: KindInt64,
				Get: func(e any) any { return e.(*models.DeviceCard).SupplierID },
				Set: func(e any, v any) { e.(*models.DeviceCard).SupplierID = v.(int64) }},
			{Name: "serviceProviderId", Column: "service_provider_id", Kind: KindInt64,
				Get: func(e any) any { return e.(*models.DeviceCard).ServiceProviderID },
				Set: func(e any, v any) { e.(*models.DeviceCard).ServiceProviderID = v.(int64) }},
			{Name: "metConfirmationId", Column: "met_confirmation_id", Kind: KindInt64,
				Get: func(e any) any { return e.(*models.DeviceCard).MetConfirmationID },
				Set: func(e any, v any) { e.(*models.DeviceCard).MetConfirmationID = v.(int64) }},
		},
		auditFields(func(e any) *models.AuditStamps { return &e.(*models.DeviceCard).AuditStamps }),
		removalFields(func(e any) *models.RemovalStamps { return &e.(*models.DeviceCard).RemovalStamps }),
		disableFields(func(e any) *models.DisableStamps { return &e.(*models.DeviceCard).DisableStamps }),
	),
	Searchable: []string{"serialNumber"},
	Navigations: []Navigation{
		{Name: "device", Kind: NavRef, Target: target("device"),
			FK: "device_id",
			Assign: func(parent any, related []any) {
				c := parent.(*models.DeviceCard)
				if len(related) > 0 {
					c.Device = related[0].(*models.Device)
				}
			}},
		{Name: "supplier", Kind: NavRef, Target: target("supplier"),
			FK: "supplier_id",
			Assign: func(parent any, related []any) {
				c := parent.(*models.DeviceCard)
				if len(related) > 0 {
					c.Supplier = related[0].(*models.Supplier)
				}
			}},
		{Name: "serviceProvider", Kind: NavRef, Target: target("serviceProvider"),
			FK: "service_provider_id",
			Assign: func(parent any, related []any) {
				c := parent.(*models.DeviceCard)
				if len(related) > 0 {
					c.ServiceProvider = related[0].(*models.ServiceProvider)
				}
			}},
		{Name: "metConfirmation", Kind: NavRef, Target: target("metConfirmation"),
			FK: "met_confirmation_id",
			Assign: func(parent any, related []any) {
				c := parent.(*models.DeviceCard)
				if len(related) > 0 {
					c.MetConfirmation = related[0].(*models.MetConfirmation)
				}
			}},
		{Name: "events", Kind: NavChildren, Target: target("event"),
			FK: "device_card_id", OrderField: "id",
			Assign: func(parent any, related []any) {
				c := parent.(*models.DeviceCard)
				c.Events = make([]*models.Event, len(related))
				for i, r := range related {
					c.Events[i] = r.(*models.Event)
				}
			}},
		{Name: "operations", Kind: NavChildren, Target: target("deviceOperation"),
			FK: "device_card_id", OrderField: "orderNo",
			Assign: func(parent any, related []any) {
				c := parent.(*models.DeviceCard)
				c.Operations = make([]*models.DeviceOperation, len(related))
				for i, r := range related {
					c.Operations[i] = r.(*models.DeviceOperation)
				}
			}},
	},
	New: func() any { return &models.DeviceCard{} },
}).build()

// DeviceOperations describes the card-scoped checklist entry entity.
var DeviceOperations = (&Descriptor{
	Entity: "deviceOperation",
	Table:  "device_operation",
	Fields: concat(
		baseFields(func(e any) *models.Base { return &e.(*models.DeviceOperation).Base }),
		[]Field{
			{Name: "deviceCardId", Column: "device_card_id", Kind: KindInt64,
				Get: func(e any) any { return e.(*models.DeviceOperation).DeviceCardID },
				Set: func(e any, v any) { e.(*models.DeviceOperation).DeviceCardID = v.(int64) }},
			{Name: "orderNo", Column: "order_no", Kind: KindInt,
				Get: func(e any) any { return e.(*models.DeviceOperation).OrderNo },
				Set: func(e any, v any) { e.(*models.DeviceOperation).OrderNo = v.(int) }},
			{Name: "templateElementId", Column: "template_element_id", Kind: KindInt64,
				Get: func(e any) any { return e.(*models.DeviceOperation).TemplateElementID },
				Set: func(e any, v any) { e.(*models.DeviceOperation).TemplateElementID = v.(int64) }},
			{Name: "isRequired", Column: "is_required", Kind: KindBool,
				Get: func(e any) any { return e.(*models.DeviceOperation).IsRequired },
				Set: func(e any, v any) { e.(*models.DeviceOperation).IsRequired = v.(bool) }},
			{Name: "name", Column: "name", Kind: KindText,
				Get: func(e any) any { return e.(*models.DeviceOperation).Name },
				Set: func(e any, v any) { e.(*models.DeviceOperation).Name = v.(string) }},
			{Name: "label", Column: "label", Kind: KindText,
				Get: func(e any) any { return e.(*models.DeviceOperation).Label },
				Set: func(e any, v any) { e.(*models.DeviceOperation).Label = v.(string) }},
			{Name: "value", Column: "value", Kind: KindNullFloat,
				Get: func(e any) any { return floatOrNil(e.(*models.DeviceOperation).Value) },
				Set: func(e any, v any) { e.(*models.DeviceOperation).Value = nullFloat(v) }},
			{Name: "unit", Column: "unit", Kind: KindNullText,
				Get: func(e any) any { return textOrNil(e.(*models.DeviceOperation).Unit) },
				Set: func(e any, v any) { e.(*models.DeviceOperation).Unit = nullText(v) }},
			{Name: "operationStatus", Column: "operation_status", Kind: KindText,
				Get: func(e any) any { return e.(*models.DeviceOperation).OperationStatus },
				Set: func(e any, v any) { e.(*models.DeviceOperation).OperationStatus = v.(string) }},
		},
		auditFields(func(e any) *models.AuditStamps { return &e.(*models.DeviceOperation).AuditStamps }),
		removalFields(func(e any) *models.RemovalStamps { return &e.(*models.DeviceOperation).RemovalStamps }),
	),
	Searchable: []string{"name", "label"},
	Navigations: []Navigation{
		{Name: "card", Kind: NavRef, Target: target("deviceCard"),
			FK: "device_card_id",
			Assign: func(parent any, related []any) {
				o := parent.(*models.DeviceOperation)
				if len(related) > 0 {
					o.Card = related[0].(*models.DeviceCard)
				}
			}},
		{Name: "templateElement", Kind: NavRef, Target: target("templateElement"),
			FK: "template_element_id",
			Assign: func(parent any, related []any) {
				o := parent.(*models.DeviceOperation)
				if len(related) > 0 {
					o.TemplateElement = related[0].(*models.TemplateElement)
				}
			}},
	},
	New: func() any { return &models.DeviceOperation{} },
}).build()

// Events describes the card audit-event entity.
var Events = (&Descriptor{
	Entity: "event",
	Table:  "event",
	Fields: concat(
		baseFields(func(e any) *models.Base { return &e.(*models.Event).Base }),
		[]Field{
			{Name: "deviceCardId", Column: "device_card_id", Kind: KindInt64,
				Get: func(e any) any { return e.(*models.Event).DeviceCardID },
				Set: func(e any, v any) { e.(*models.Event).DeviceCardID = v.(int64) }},
			{Name: "eventType", Column: "event_type", Kind: KindInt,
				Get: func(e any) any { return int(e.(*models.Event).EventType) },
				Set: func(e any, v any) { e.(*models.Event).EventType = models.EventType(v.(int)) }},
			{Name: "description", Column: "description", Kind: KindNullText,
				Get: func(e any) any { return textOrNil(e.(*models.Event).Description) },
				Set: func(e any, v any) { e.(*models.Event).Description = nullText(v) }},
		},
		auditFields(func(e any) *models.AuditStamps { return &e.(*models.Event).AuditStamps }),
		removalFields(func(e any) *models.RemovalStamps { return &e.(*models.Event).RemovalStamps }),
	),
	Searchable: []string{"description"},
	Navigations: []Navigation{
		{Name: "card", Kind: NavRef, Target: target("deviceCard"),
			FK: "device_card_id",
			Assign: func(parent any, related []any) {
				ev := parent.(*models.Event)
				if len(related) > 0 {
					ev.Card = related[0].(*models.DeviceCard)
				}
			}},
	},
	New: func() any { return &models.Event{} },
}).build()

// TemplateElements describes the template UI element entity. It carries no
// lifecycle capabilities, so deletes are physical and the default sort falls
// back to id ascending.
var TemplateElements = (&Descriptor{
	Entity: "templateElement",
	Table:  "template_element",
	Fields: concat(
		baseFields(func(e any) *models.Base { return &e.(*models.TemplateElement).Base }),
		[]Field{
			{Name: "name", Column: "name", Kind: KindText,
				Get: func(e any) any { return e.(*models.TemplateElement).Name },
				Set: func(e any, v any) { e.(*models.TemplateElement).Name = v.(string) }},
			{Name: "elemType", Column: "elem_type", Kind: KindInt,
				Get: func(e any) any { return e.(*models.TemplateElement).ElemType },
				Set: func(e any, v any) { e.(*models.TemplateElement).ElemType = v.(int) }},
		},
	),
	Searchable: []string{"name"},
	New:        func() any { return &models.TemplateElement{} },
}).build()

// All lists every registered descriptor, in dependency order.
var All = []*Descriptor{
	Locations,
	Suppliers,
	ServiceProviders,
	MetConfirmations,
	TemplateElements,
	Devices,
	DeviceCards,
	DeviceOperations,
	Events,
}
