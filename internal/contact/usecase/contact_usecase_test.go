package usecase

import (
	"errors"
	"reflect"
	"testing"

	contactdomain "billmailer/internal/contact/domain"
	contactdto "billmailer/internal/contact/dto"
)

type mockContactRepo struct {
	contacts []contactdomain.Contact
	err      error

	gotKeys [][]string
	created *contactdomain.Contact
}

func (m *mockContactRepo) Create(c *contactdomain.Contact) error {
	m.created = c
	return m.err
}
func (m *mockContactRepo) Update(c *contactdomain.Contact) error { return m.err }
func (m *mockContactRepo) Delete(id string) error                { return m.err }

func (m *mockContactRepo) FindByID(id string) (*contactdomain.Contact, error) {
	for i := range m.contacts {
		if m.contacts[i].ID == id {
			return &m.contacts[i], nil
		}
	}
	return nil, m.err
}

func (m *mockContactRepo) FindByAccountKey(key string) (*contactdomain.Contact, error) {
	for i := range m.contacts {
		if m.contacts[i].AccountKey == key {
			return &m.contacts[i], nil
		}
	}
	return nil, m.err
}

func (m *mockContactRepo) FindByAccountKeys(keys []string) ([]contactdomain.Contact, error) {
	m.gotKeys = append(m.gotKeys, keys)
	if m.err != nil {
		return nil, m.err
	}
	var out []contactdomain.Contact
	for _, k := range keys {
		for i := range m.contacts {
			if m.contacts[i].AccountKey == k {
				out = append(out, m.contacts[i])
			}
		}
	}
	return out, nil
}

func (m *mockContactRepo) List() ([]contactdomain.Contact, error) {
	return m.contacts, m.err
}

func TestResolveNormalizesKeys(t *testing.T) {
	repo := &mockContactRepo{contacts: []contactdomain.Contact{
		{ID: "1", AccountKey: "PR20", Email: "alice@example.com"},
	}}
	uc := NewContactUsecase(repo)

	got := uc.Resolve([]string{" PR20 ", "PR20", "", "PR21"})

	if len(repo.gotKeys) != 1 {
		t.Fatalf("expected exactly one batched lookup, got %d", len(repo.gotKeys))
	}
	if want := []string{"PR20", "PR21"}; !reflect.DeepEqual(repo.gotKeys[0], want) {
		t.Errorf("looked up keys %v, want %v", repo.gotKeys[0], want)
	}
	if got["PR20"] == nil || got["PR20"].Email != "alice@example.com" {
		t.Errorf("PR20 = %+v, want alice@example.com", got["PR20"])
	}
	if _, ok := got["PR21"]; ok {
		t.Error("unmatched key must be absent from the mapping")
	}
}

func TestResolveEmptyAndErrorCases(t *testing.T) {
	uc := NewContactUsecase(&mockContactRepo{})
	if got := uc.Resolve(nil); len(got) != 0 {
		t.Errorf("empty key set: got %v, want empty map", got)
	}

	uc = NewContactUsecase(&mockContactRepo{err: errors.New("store unreachable")})
	if got := uc.Resolve([]string{"PR20"}); len(got) != 0 {
		t.Errorf("store error: got %v, want empty map", got)
	}
}

func TestResolveIdempotent(t *testing.T) {
	repo := &mockContactRepo{contacts: []contactdomain.Contact{
		{ID: "1", AccountKey: "PR20", Email: "alice@example.com"},
		{ID: "2", AccountKey: "PR21", Email: "bob@example.com"},
	}}
	uc := NewContactUsecase(repo)

	first := uc.Resolve([]string{"PR20", "PR21"})
	second := uc.Resolve([]string{"PR20", "PR21"})

	if !reflect.DeepEqual(first, second) {
		t.Errorf("resolving the same key set twice differed: %v vs %v", first, second)
	}
}

func TestCreateNormalizesEmail(t *testing.T) {
	repo := &mockContactRepo{}
	uc := NewContactUsecase(repo)

	c, err := uc.Create(&contactdto.ContactRequest{
		AccountKey: " PR20 ",
		Name:       "Alice",
		Email:      " Alice@Example.COM ",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if c.AccountKey != "PR20" || c.Email != "alice@example.com" {
		t.Errorf("got key=%q email=%q", c.AccountKey, c.Email)
	}
}

func TestCreateRejectsBadInput(t *testing.T) {
	uc := NewContactUsecase(&mockContactRepo{})

	if _, err := uc.Create(&contactdto.ContactRequest{AccountKey: "PR20", Email: "not-an-address"}); err == nil {
		t.Error("expected an error for a malformed email")
	}
	if _, err := uc.Create(&contactdto.ContactRequest{AccountKey: "  ", Email: "a@example.com"}); err == nil {
		t.Error("expected an error for a blank account key")
	}
}

func TestCreateRejectsDuplicateKey(t *testing.T) {
	repo := &mockContactRepo{contacts: []contactdomain.Contact{
		{ID: "1", AccountKey: "PR20", Email: "alice@example.com"},
	}}
	uc := NewContactUsecase(repo)

	if _, err := uc.Create(&contactdto.ContactRequest{AccountKey: "PR20", Email: "b@example.com"}); err == nil {
		t.Error("expected an error for a duplicate account key")
	}
}
