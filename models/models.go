package models

// All lists every persisted model, in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Startup{},
		&Investor{},
		&InvestmentOffer{},
		&Conversation{},
		&Message{},
		&Notification{},
		&FileUpload{},
	}
}
