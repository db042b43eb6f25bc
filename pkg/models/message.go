package models

import "time"

// Message is a raw inbound message as delivered by the mail relay. The relay may
// redeliver a message that was already processed; downstream persistence is
// idempotent on the message ID.
type Message struct {
	ID         string    `json:"id"`
	Sender     string    `json:"sender"`
	Subject    string    `json:"subject"`
	Body       string    `json:"body"`
	ReceivedAt time.Time `json:"received_at"`
}
