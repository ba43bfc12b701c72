package domain

// RelayRequest is the body accepted by the relay endpoint
type RelayRequest struct {
	Messages []ChatMessage    `json:"messages"`
	Products []ProductSummary `json:"products"`
	Now      string           `json:"now,omitempty"`
}

// RelayReply is the body returned by the relay on success
type RelayReply struct {
	Reply     string     `json:"reply"`
	Citations []Citation `json:"citations,omitempty"`
}
