package models

import (
	"time"

	"github.com/google/uuid"
)

// Account represents one monitored mailbox owner. Every alert, checkpoint, and
// sync run belongs to an account; accounts are synced independently.
type Account struct {
	ID             uuid.UUID `db:"id"              json:"id"`
	Name           string    `db:"name"            json:"name"`
	MailboxAddress string    `db:"mailbox_address" json:"mailbox_address"`
	CreatedAt      time.Time `db:"created_at"      json:"created_at"`
}
