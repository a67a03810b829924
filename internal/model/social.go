package model

import "time"

// Follow records that Follower follows Followee.
type Follow struct {
	FollowerID uint `gorm:"primaryKey"`
	FolloweeID uint `gorm:"primaryKey;index"`
	CreatedAt  time.Time
}

// MessageRequest is a pending request from Sender to start messaging Receiver.
type MessageRequest struct {
	SenderID   uint `gorm:"primaryKey"`
	ReceiverID uint `gorm:"primaryKey;index"`
	CreatedAt  time.Time
}

// Contact lets User message Contact. Accepted requests add both directions.
type Contact struct {
	UserID    uint `gorm:"primaryKey"`
	ContactID uint `gorm:"primaryKey"`
	CreatedAt time.Time
}
