package model

// SenderCount is one entry of the per-sender message tally.
type SenderCount struct {
	From  string `db:"from_msisdn" json:"from"`
	Count int    `db:"count" json:"count"`
}

// Stats is the aggregate view over every stored message. The timestamp
// bounds are nil while the store is empty.
type Stats struct {
	TotalMessages         int           `json:"total_messages"`
	SendersCount          int           `json:"senders_count"`
	MessagesPerSender     []SenderCount `json:"messages_per_sender"`
	FirstMessageTimestamp *string       `json:"first_message_timestamp"`
	LastMessageTimestamp  *string       `json:"last_message_timestamp"`
}
