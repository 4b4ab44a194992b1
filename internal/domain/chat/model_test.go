package chat

import "testing"

func TestContext_ID_Derivation(t *testing.T) {
	cases := []struct {
		name string
		ctx  Context
		want string
	}{
		{"own profile", Context{Type: ContextMyProfile}, "myProfile"},
		{"delegated", Context{Type: ContextDelegated, TargetUserID: "user-555"}, "delegated-user-555"},
		{"delegated other target", Context{Type: ContextDelegated, TargetUserID: "user-777"}, "delegated-user-777"},
		{"delegated without target", Context{Type: ContextDelegated}, "unknown"},
		{"zero value", Context{}, "unknown"},
		{"junk type", Context{Type: ContextType("group")}, "unknown"},
	}

	for _, tc := range cases {
		if got := tc.ctx.ID(); got != tc.want {
			t.Fatalf("%s: got %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestContext_ID_DistinctTargetsNeverCollide(t *testing.T) {
	a := Context{Type: ContextDelegated, TargetUserID: "user-a"}
	b := Context{Type: ContextDelegated, TargetUserID: "user-b"}
	if a.ID() == b.ID() {
		t.Fatalf("distinct delegated targets must derive distinct ids")
	}
}
