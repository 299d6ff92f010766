package dto

import contactdomain "billmailer/internal/contact/domain"

type ContactRequest struct {
	AccountKey string `json:"account_key" binding:"required"`
	Name       string `json:"name"`
	Email      string `json:"email" binding:"required"`
}

type ContactsResponse struct {
	Contacts []contactdomain.Contact `json:"contacts"`
}
