package schema

import "testing"

// The entity graph is cyclic (location <-> device, card <-> supplier, ...),
// so navigation targets resolve through the registry. Every target must be
// wired by the time package initialization finishes.
func TestNavigationTargetsResolve(t *testing.T) {
	if len(All) != 9 {
		t.Fatalf("expected 9 descriptors, got %d", len(All))
	}
	for _, d := range All {
		for _, nav := range d.Navigations {
			got := nav.Target()
			if got == nil {
				t.Errorf("%s.%s: target did not resolve", d.Entity, nav.Name)
			}
		}
	}
}

func TestNavigationTargetIdentity(t *testing.T) {
	nav, ok := Locations.Navigation("devices")
	if !ok {
		t.Fatal("locations has no devices navigation")
	}
	if nav.Target() != Devices {
		t.Error("locations.devices target is not the device descriptor")
	}

	nav, ok = Devices.Navigation("location")
	if !ok {
		t.Fatal("devices has no location navigation")
	}
	if nav.Target() != Locations {
		t.Error("devices.location target is not the location descriptor")
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"card", true},
		{"card.operations", true},
		{"card.supplier", true},
		{"card.operations.templateElement", true},
		{"Location", true},
		{"bogus", false},
		{"card.bogus", false},
	}
	for _, tt := range tests {
		if got := Devices.ValidatePath(tt.path); got != tt.want {
			t.Errorf("ValidatePath(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}
