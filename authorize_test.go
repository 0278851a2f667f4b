package auth

import (
	"errors"
	"testing"
)

func TestAuthorize(t *testing.T) {
	admin := &Identity{ID: "u1", Role: "admin"}
	member := &Identity{ID: "u2", Role: "member"}

	cases := []struct {
		name     string
		identity *Identity
		roles    []string
		want     error
	}{
		{"nil identity", nil, []string{"admin"}, ErrUnauthenticated},
		{"empty identity", &Identity{}, []string{"admin"}, ErrUnauthenticated},
		{"role allowed", admin, []string{"admin"}, nil},
		{"role in larger set", member, []string{"admin", "member"}, nil},
		{"role not allowed", member, []string{"admin"}, ErrForbidden},
		{"empty set admits any authenticated", member, nil, nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Authorize(tc.identity, tc.roles...)
			if tc.want == nil {
				if err != nil {
					t.Fatalf("expected nil, got %v", err)
				}
				return
			}
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}
