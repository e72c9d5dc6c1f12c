package emailsend

import "time"

type Input struct {
	RFPID       string `json:"rfpId,omitempty"`
	From        string `json:"from,omitempty"`
	To          string `json:"to"`
	CC          string `json:"cc,omitempty"`
	ReplyTo     string `json:"replyTo,omitempty"`
	Subject     string `json:"subject,omitempty"`
	Body        string `json:"body,omitempty"`
	BidDocument string `json:"bid_document,omitempty"`
	IsHTML      bool   `json:"isHtml"`
}

type Output struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	MessageID string    `json:"messageId,omitempty"`
	Provider  string    `json:"provider,omitempty"`
	SentAt    time.Time `json:"sentAt,omitempty"`
}
