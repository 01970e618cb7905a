// SPDX-License-Identifier: MPL-2.0

package registry

import (
	"errors"
	"testing"
)

func names(closure []Framework) []string {
	out := make([]string, len(closure))
	for i, rec := range closure {
		out[i] = rec.Name
	}
	return out
}

func assertOrder(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("closure = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("closure = %v, want %v", got, want)
		}
	}
}

func TestResolveBreadthFirst(t *testing.T) {
	t.Parallel()

	// app extends [base, tools]; base extends [core]; tools extends [core].
	reg := Merge([]Framework{
		fw("app", OriginRemote, "base", "tools"),
		fw("base", OriginRemote, "core"),
		fw("tools", OriginRemote, "core"),
		fw("core", OriginRemote),
		fw("unrelated", OriginRemote),
	})

	closure, err := reg.Resolve("app")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	assertOrder(t, names(closure), []string{"app", "base", "tools", "core"})
}

func TestResolveDeterministic(t *testing.T) {
	t.Parallel()

	reg := Merge([]Framework{
		fw("a", OriginRemote, "b", "c"),
		fw("b", OriginRemote),
		fw("c", OriginRemote),
	})

	first, err := reg.Resolve("a")
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 10; i++ {
		again, err := reg.Resolve("a")
		if err != nil {
			t.Fatal(err)
		}
		assertOrder(t, names(again), names(first))
	}
}

func TestResolveCycleTerminates(t *testing.T) {
	t.Parallel()

	reg := Merge([]Framework{
		fw("a", OriginRemote, "b"),
		fw("b", OriginRemote, "a"),
	})

	closure, err := reg.Resolve("a")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	assertOrder(t, names(closure), []string{"a", "b"})
}

func TestResolveSelfExtends(t *testing.T) {
	t.Parallel()

	reg := Merge([]Framework{fw("a", OriginRemote, "a")})
	closure, err := reg.Resolve("a")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	assertOrder(t, names(closure), []string{"a"})
}

func TestResolveDanglingExtendsFails(t *testing.T) {
	t.Parallel()

	reg := Merge([]Framework{
		fw("app", OriginRemote, "ghost"),
		fw("other", OriginRemote),
	})

	_, err := reg.Resolve("app")
	var dangling *DanglingExtendsError
	if !errors.As(err, &dangling) {
		t.Fatalf("Resolve() error = %v, want DanglingExtendsError", err)
	}
	if dangling.Parent != "app" || dangling.Missing != "ghost" {
		t.Errorf("DanglingExtendsError = %+v, want parent app missing ghost", dangling)
	}

	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("error %v does not unwrap to NotFoundError", err)
	}
	if nf.Name != "ghost" {
		t.Errorf("unwrapped Name = %q, want ghost", nf.Name)
	}
}

func TestResolveUnknownRoot(t *testing.T) {
	t.Parallel()

	reg := Merge(nil)
	_, err := reg.Resolve("nope")
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("Resolve() error = %v, want NotFoundError", err)
	}
}
