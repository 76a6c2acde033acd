package pets

import (
	"encoding/json"
	"testing"
)

func TestUnmarshalPetWithEmbeddedOwner(t *testing.T) {
	raw := `{
		"_id": "p1",
		"name": "Барсик",
		"type": "Кошка",
		"breed": "Сиамская",
		"age": "3",
		"ownerId": {"_id": "u1", "name": "Иван Петров", "email": "ivan@vet.ru", "role": "client"},
		"createdAt": "2026-01-15T10:00:00Z"
	}`

	var p Pet
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		t.Fatal(err)
	}
	if p.ID != "p1" || p.Name != "Барсик" || p.Age != "3" {
		t.Fatalf("Pet = %+v", p)
	}
	if p.Owner.RefID() != "u1" {
		t.Errorf("Owner.RefID() = %q", p.Owner.RefID())
	}
	if p.Owner.DisplayName() != "Иван Петров" {
		t.Errorf("Owner.DisplayName() = %q", p.Owner.DisplayName())
	}
	if p.CreatedAt.IsZero() {
		t.Error("CreatedAt no parseado")
	}
}

func TestUnmarshalPetWithBareOwnerID(t *testing.T) {
	var p Pet
	if err := json.Unmarshal([]byte(`{"_id":"p2","name":"Рекс","type":"Собака","ownerId":"u9"}`), &p); err != nil {
		t.Fatal(err)
	}
	if p.Owner.RefID() != "u9" {
		t.Errorf("Owner.RefID() = %q", p.Owner.RefID())
	}
	if p.Owner.DisplayName() != "u9" {
		t.Errorf("Owner.DisplayName() = %q, quiero id pelado", p.Owner.DisplayName())
	}
}

func TestUnmarshalPetNumericAge(t *testing.T) {
	var p Pet
	if err := json.Unmarshal([]byte(`{"_id":"p3","name":"Кеша","type":"Попугай","age":5}`), &p); err != nil {
		t.Fatal(err)
	}
	if p.Age != "5" {
		t.Errorf("Age = %q, quiero \"5\"", p.Age)
	}
}

func TestPetRefFallbacks(t *testing.T) {
	var r Ref
	if err := json.Unmarshal([]byte(`null`), &r); err != nil {
		t.Fatal(err)
	}
	if r.DisplayName() != UnknownLabel {
		t.Errorf("DisplayName() = %q", r.DisplayName())
	}
	if r.DisplayType() != "" {
		t.Errorf("DisplayType() = %q, quiero vacío", r.DisplayType())
	}

	if err := json.Unmarshal([]byte(`{"_id":"p4","name":"Мурка","type":"Кошка"}`), &r); err != nil {
		t.Fatal(err)
	}
	if r.DisplayName() != "Мурка" || r.DisplayType() != "Кошка" {
		t.Errorf("Ref embebida: %q / %q", r.DisplayName(), r.DisplayType())
	}
}
