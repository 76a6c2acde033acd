package file

import (
	"context"
	"os"
	"testing"

	"vetclinic-client/internal/domain/users"
)

func TestSaveLoadClear(t *testing.T) {
	ctx := context.Background()
	st, err := New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	// Slot vacío al inicio.
	if _, ok, err := st.Load(ctx); err != nil || ok {
		t.Fatalf("Load inicial = %v, %v", ok, err)
	}

	u := users.User{ID: "u1", Name: "Иван Петров", Email: "client@vet.ru", Role: users.RoleClient}
	if err := st.Save(ctx, u); err != nil {
		t.Fatal(err)
	}

	got, ok, err := st.Load(ctx)
	if err != nil || !ok {
		t.Fatalf("Load = %v, %v", ok, err)
	}
	if got != u {
		t.Errorf("got %+v, quiero %+v", got, u)
	}

	if err := st.Clear(ctx); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := st.Load(ctx); ok {
		t.Error("slot no vaciado")
	}

	// Clear sobre slot vacío es idempotente.
	if err := st.Clear(ctx); err != nil {
		t.Fatal(err)
	}
}

func TestLoadCorruptSlotActsEmpty(t *testing.T) {
	ctx := context.Background()
	st, err := New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(st.Path(), []byte("{garbage"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, ok, err := st.Load(ctx); err != nil || ok {
		t.Fatalf("slot corrupto: Load = %v, %v (quiero vacío sin error)", ok, err)
	}

	// Identidad sin id tampoco cuenta como sesión.
	if err := os.WriteFile(st.Path(), []byte(`{"name":"x"}`), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := st.Load(ctx); ok {
		t.Error("slot sin id debe actuar vacío")
	}
}
