package model

import (
	"fmt"
	"time"
)

// NotificationType identifies why a notification was created.
type NotificationType string

const (
	NotifySubjectMentioned    NotificationType = "subject_mentioned"
	NotifyCommentMentioned    NotificationType = "comment_mentioned"
	NotifyComment             NotificationType = "comment"
	NotifyFollow              NotificationType = "follow"
	NotifySentMsgRequest      NotificationType = "sent_msg_request"
	NotifyConfirmedMsgRequest NotificationType = "confirmed_msg_request"
)

// Notification tells Target that Actor did something, optionally about a subject.
type Notification struct {
	ID        uint             `gorm:"primaryKey" json:"id"`
	ActorID   uint             `gorm:"not null;index" json:"actor_id"`
	Actor     *User            `json:"actor,omitempty"`
	SubjectID *uint            `gorm:"index" json:"subject_id,omitempty"`
	Subject   *Subject         `gorm:"constraint:OnDelete:SET NULL;" json:"subject,omitempty"`
	TargetID  uint             `gorm:"not null;index" json:"target_id"`
	Type      NotificationType `gorm:"size:64;not null" json:"type"`
	IsRead    bool             `gorm:"not null;default:false" json:"is_read"`
	CreatedAt time.Time        `json:"created_at"`
}

// Message renders the notification for display. Actor and Subject should be
// preloaded; missing relations fall back to ids.
func (n Notification) Message() string {
	actor := fmt.Sprintf("user #%d", n.ActorID)
	if n.Actor != nil && n.Actor.Username != "" {
		actor = n.Actor.Username
	}
	subject := ""
	if n.Subject != nil {
		subject = n.Subject.Title
	}
	switch n.Type {
	case NotifyComment:
		return fmt.Sprintf("%s commented on your subject %q.", actor, subject)
	case NotifySubjectMentioned:
		return fmt.Sprintf("%s mentioned you in their subject %q.", actor, subject)
	case NotifyFollow:
		return fmt.Sprintf("%s followed you.", actor)
	case NotifySentMsgRequest:
		return fmt.Sprintf("%s sent you a message request.", actor)
	case NotifyConfirmedMsgRequest:
		return fmt.Sprintf("%s accepted your message request.", actor)
	default:
		return fmt.Sprintf("%s mentioned you in their comment on subject %q.", actor, subject)
	}
}
