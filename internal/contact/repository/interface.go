package repository

import contactdomain "billmailer/internal/contact/domain"

type ContactRepository interface {
	Create(contact *contactdomain.Contact) error
	Update(contact *contactdomain.Contact) error
	Delete(id string) error
	FindByID(id string) (*contactdomain.Contact, error)
	FindByAccountKey(accountKey string) (*contactdomain.Contact, error)
	// FindByAccountKeys is the batched lookup behind contact resolution:
	// one query regardless of how many keys are requested.
	FindByAccountKeys(accountKeys []string) ([]contactdomain.Contact, error)
	List() ([]contactdomain.Contact, error)
}
