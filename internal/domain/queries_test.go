package domain

import "testing"

func TestValidIdentifier(t *testing.T) {
	cases := map[string]bool{
		"ventas":        true,
		"_staging_2024": true,
		"OrderItems":    true,
		"":              false,
		"1table":        false,
		"drop table":    false,
		"t1;--":         false,
		"public.orders": false,
		"name=eq.x&a=b": false,
	}
	for in, want := range cases {
		if got := ValidIdentifier(in); got != want {
			t.Errorf("ValidIdentifier(%q)=%v want %v", in, got, want)
		}
	}
}

func TestErrorStatus_Valid(t *testing.T) {
	for _, s := range []ErrorStatus{StatusPending, StatusNotified, StatusRetrying} {
		if !s.Valid() {
			t.Errorf("%q should be valid", s)
		}
	}
	if ErrorStatus("resolved").Valid() {
		t.Errorf("resolved is not a stored status")
	}
}

func TestAuditConfig_LinkedFunction(t *testing.T) {
	fn := "jobA"
	if (AuditConfig{FunctionName: &fn}).LinkedFunction() != "jobA" {
		t.Fatal("linked function not returned")
	}
	if (AuditConfig{}).LinkedFunction() != "" {
		t.Fatal("unlinked config should return empty name")
	}
}
