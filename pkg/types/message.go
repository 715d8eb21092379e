package types

import "time"

type Message struct {
	ID        string    `db:"id" json:"id"`
	SenderID  string    `db:"sender_id" json:"sender_id"`
	Subject   string    `db:"subject" json:"subject"`
	Content   string    `db:"content" json:"content"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

type MessageRecipient struct {
	ID          string     `db:"id" json:"id"`
	MessageID   string     `db:"message_id" json:"message_id"`
	RecipientID string     `db:"recipient_id" json:"recipient_id"`
	ReadAt      *time.Time `db:"read_at" json:"read_at"`
	DeletedAt   *time.Time `db:"deleted_at" json:"deleted_at"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

type MessageAttachment struct {
	ID        string    `db:"id" json:"id"`
	MessageID string    `db:"message_id" json:"message_id"`
	FileName  string    `db:"file_name" json:"file_name"`
	FilePath  string    `db:"file_path" json:"-"`
	FileType  string    `db:"file_type" json:"file_type"`
	FileSize  int64     `db:"file_size" json:"file_size"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// MessageThread is a message with its recipients and attachments.
type MessageThread struct {
	Message
	Recipients  []*MessageRecipient  `json:"recipients"`
	Attachments []*MessageAttachment `json:"attachments"`
}

// Recipient returns the recipient row for userID, nil when userID is not a recipient.
func (t *MessageThread) Recipient(userID string) *MessageRecipient {
	for _, r := range t.Recipients {
		if r.RecipientID == userID {
			return r
		}
	}
	return nil
}

// CanAccess reports whether userID is the sender or a recipient.
func (t *MessageThread) CanAccess(userID string) bool {
	return t.SenderID == userID || t.Recipient(userID) != nil
}

// InboxItem is a message as seen by one recipient.
type InboxItem struct {
	Message
	ReadAt          *time.Time `db:"read_at" json:"read_at"`
	DeletedAt       *time.Time `db:"deleted_at" json:"deleted_at"`
	SenderName      *string    `db:"sender_name" json:"sender_name"`
	AttachmentCount int64      `db:"attachment_count" json:"attachment_count"`
}

type MessageInput struct {
	Subject      string   `json:"subject" form:"subject" validate:"required,max=200"`
	Content      string   `json:"content" form:"content" validate:"required,max=20000"`
	RecipientIDs []string `json:"recipient_ids" form:"recipient_ids" validate:"required,min=1,max=500,dive,required"`
}

type InboxFilter struct {
	IncludeDeleted bool `form:"include_deleted"`
	OnlyDeleted    bool `form:"only_deleted"`
	UnreadOnly     bool `form:"unread"`
}
