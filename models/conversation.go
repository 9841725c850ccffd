package models

import "time"

type Conversation struct {
	Base
	Participant1ID string    `gorm:"type:varchar(36);uniqueIndex:idx_conversation_pair;not null" json:"participant1Id"`
	Participant2ID string    `gorm:"type:varchar(36);uniqueIndex:idx_conversation_pair;index;not null" json:"participant2Id"`
	LastMessageAt  time.Time `gorm:"index" json:"lastMessageAt"`
}

// HasParticipant reports whether userID is one side of the pair.
func (c *Conversation) HasParticipant(userID string) bool {
	return c.Participant1ID == userID || c.Participant2ID == userID
}

// OtherParticipant returns the side of the pair that is not userID.
func (c *Conversation) OtherParticipant(userID string) string {
	if c.Participant1ID == userID {
		return c.Participant2ID
	}
	return c.Participant1ID
}

type Message struct {
	Base
	ConversationID string `gorm:"type:varchar(36);index;not null" json:"conversationId"`
	SenderID       string `gorm:"type:varchar(36);index;not null" json:"senderId"`
	Content        string `gorm:"type:text;not null" json:"content"`
	IsRead         bool   `gorm:"not null;default:false" json:"isRead"`
}
