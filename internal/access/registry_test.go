package access

import "testing"

func TestCan(t *testing.T) {
	registry, err := NewRegistry()
	if err != nil {
		t.Fatalf("failed to create registry: %v", err)
	}

	tests := []struct {
		name   string
		role   string
		entity string
		action string
		want   bool
	}{
		{"admin wildcard", "admin", "device", "remove", true},
		{"admin unknown entity still granted", "admin", "whatever", "anything", true},
		{"management device disable", "management", "device", "disable", true},
		{"management reorder operations", "management", "deviceOperation", "reorder", true},
		{"management cannot reorder cards", "management", "deviceCard", "reorder", false},
		{"management reads any entity", "management", "templateElement", "read", true},
		{"user reads devices", "user", "device", "read", true},
		{"user cannot create devices", "user", "device", "create", false},
		{"user updates operations", "user", "deviceOperation", "update", true},
		{"user creates events", "user", "event", "create", true},
		{"case insensitive role", "Admin", "device", "read", true},
		{"case insensitive entity", "user", "DeviceOperation", "UPDATE", true},
		{"unknown role", "guest", "device", "read", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := registry.Can(tt.role, tt.entity, tt.action); got != tt.want {
				t.Errorf("Can(%q, %q, %q) = %v, want %v", tt.role, tt.entity, tt.action, got, tt.want)
			}
		})
	}
}

func TestRoles(t *testing.T) {
	registry, err := NewRegistry()
	if err != nil {
		t.Fatalf("failed to create registry: %v", err)
	}

	got := registry.Roles()
	if len(got) != 3 {
		t.Fatalf("expected 3 roles, got %v", got)
	}
	seen := make(map[string]bool, len(got))
	for _, name := range got {
		seen[name] = true
	}
	for _, want := range []string{"admin", "management", "user"} {
		if !seen[want] {
			t.Errorf("missing role %q", want)
		}
	}
}
