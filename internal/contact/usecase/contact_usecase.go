package usecase

import (
	"errors"
	"fmt"
	"log"
	"net/mail"
	"strings"

	contactdomain "billmailer/internal/contact/domain"
	contactdto "billmailer/internal/contact/dto"
	"billmailer/internal/contact/repository"
)

// ContactUsecase resolves account keys to directory entries and backs the
// directory CRUD screens.
type ContactUsecase interface {
	// Resolve maps each requested account key to its single matching
	// contact. Keys are trimmed and deduplicated, empty values discarded.
	// A store error yields an empty map, reported to the operational log
	// only; the review screen still renders with what is known.
	Resolve(accountKeys []string) map[string]*contactdomain.Contact

	List() ([]contactdomain.Contact, error)
	Create(req *contactdto.ContactRequest) (*contactdomain.Contact, error)
	Update(id string, req *contactdto.ContactRequest) (*contactdomain.Contact, error)
	Delete(id string) error
}

type contactUsecase struct {
	repo repository.ContactRepository
}

// NewContactUsecase creates a new instance of contactUsecase
func NewContactUsecase(repo repository.ContactRepository) ContactUsecase {
	return &contactUsecase{
		repo: repo,
	}
}

func (u *contactUsecase) Resolve(accountKeys []string) map[string]*contactdomain.Contact {
	keys := normalizeKeys(accountKeys)
	if len(keys) == 0 {
		return map[string]*contactdomain.Contact{}
	}

	contacts, err := u.repo.FindByAccountKeys(keys)
	if err != nil {
		log.Printf("[WARN] contact lookup failed for %d keys: %v", len(keys), err)
		return map[string]*contactdomain.Contact{}
	}

	byKey := make(map[string]*contactdomain.Contact, len(contacts))
	for i := range contacts {
		byKey[contacts[i].AccountKey] = &contacts[i]
	}
	return byKey
}

// normalizeKeys trims, discards empties and deduplicates while preserving
// first-seen order.
func normalizeKeys(accountKeys []string) []string {
	seen := make(map[string]struct{}, len(accountKeys))
	keys := make([]string, 0, len(accountKeys))
	for _, k := range accountKeys {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
	}
	return keys
}

func (u *contactUsecase) List() ([]contactdomain.Contact, error) {
	return u.repo.List()
}

func (u *contactUsecase) Create(req *contactdto.ContactRequest) (*contactdomain.Contact, error) {
	key := strings.TrimSpace(req.AccountKey)
	if key == "" {
		return nil, errors.New("account key is required")
	}
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, err
	}

	existing, err := u.repo.FindByAccountKey(key)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("a contact for account key %s already exists", key)
	}

	contact := &contactdomain.Contact{
		AccountKey: key,
		Name:       strings.TrimSpace(req.Name),
		Email:      email,
	}
	if err := u.repo.Create(contact); err != nil {
		return nil, err
	}
	return contact, nil
}

func (u *contactUsecase) Update(id string, req *contactdto.ContactRequest) (*contactdomain.Contact, error) {
	contact, err := u.repo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if contact == nil {
		return nil, nil
	}

	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, err
	}
	if key := strings.TrimSpace(req.AccountKey); key != "" {
		contact.AccountKey = key
	}
	contact.Name = strings.TrimSpace(req.Name)
	contact.Email = email

	if err := u.repo.Update(contact); err != nil {
		return nil, err
	}
	return contact, nil
}

func (u *contactUsecase) Delete(id string) error {
	return u.repo.Delete(id)
}

// normalizeEmail validates and lowercases a directory email address.
func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", errors.New("email is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return "", fmt.Errorf("invalid email address %q", email)
	}
	return email, nil
}
