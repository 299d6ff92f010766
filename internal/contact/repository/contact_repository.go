package repository

import (
	"errors"
	"time"

	contactdomain "billmailer/internal/contact/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// contactRepository implements ContactRepository interface
type contactRepository struct {
	db *gorm.DB
}

// NewContactRepository creates a new instance of contactRepository
func NewContactRepository(db *gorm.DB) ContactRepository {
	return &contactRepository{
		db: db,
	}
}

func (r *contactRepository) Create(contact *contactdomain.Contact) error {
	contact.ID = uuid.New().String()
	contact.CreatedAt = time.Now()
	contact.UpdatedAt = time.Now()
	return r.db.Create(contact).Error
}

func (r *contactRepository) Update(contact *contactdomain.Contact) error {
	contact.UpdatedAt = time.Now()
	return r.db.Save(contact).Error
}

func (r *contactRepository) Delete(id string) error {
	return r.db.Where("id = ?", id).Delete(&contactdomain.Contact{}).Error
}

func (r *contactRepository) FindByID(id string) (*contactdomain.Contact, error) {
	var contact contactdomain.Contact
	err := r.db.Where("id = ?", id).First(&contact).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &contact, nil
}

func (r *contactRepository) FindByAccountKey(accountKey string) (*contactdomain.Contact, error) {
	var contact contactdomain.Contact
	err := r.db.Where("account_key = ?", accountKey).First(&contact).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &contact, nil
}

func (r *contactRepository) FindByAccountKeys(accountKeys []string) ([]contactdomain.Contact, error) {
	if len(accountKeys) == 0 {
		return nil, nil
	}
	var contacts []contactdomain.Contact
	if err := r.db.Where("account_key IN ?", accountKeys).Find(&contacts).Error; err != nil {
		return nil, err
	}
	return contacts, nil
}

func (r *contactRepository) List() ([]contactdomain.Contact, error) {
	var contacts []contactdomain.Contact
	if err := r.db.Order("account_key").Find(&contacts).Error; err != nil {
		return nil, err
	}
	return contacts, nil
}
