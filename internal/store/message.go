package store

import (
	"context"
	"errors"
	"fmt"

	"familyhub/internal/utils"
	"familyhub/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
)

const (
	messageTableName           = "messages"
	messageRecipientTableName  = "message_recipients"
	messageAttachmentTableName = "message_attachments"
)

type MessageRepository struct {
	db          DB
	messages    *Table[types.Message]
	recipients  *Table[types.MessageRecipient]
	attachments *Table[types.MessageAttachment]
}

func NewMessageRepository(db DB) *MessageRepository {
	return &MessageRepository{
		db:          db,
		messages:    NewTable[types.Message](db, messageTableName).Immutable("sender_id"),
		recipients:  NewTable[types.MessageRecipient](db, messageRecipientTableName).Immutable("message_id", "recipient_id").OrderBy("created_at ASC"),
		attachments: NewTable[types.MessageAttachment](db, messageAttachmentTableName).Immutable("message_id").OrderBy("created_at ASC"),
	}
}

func (r *MessageRepository) withTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}

	return utils.ErrorWrapOrNil(tx.Commit(ctx), "failed to commit transaction")
}

// CreateMessage stores the message, one recipient row per distinct recipient
// and the attachment rows in a single transaction.
func (r *MessageRepository) CreateMessage(ctx context.Context, message *types.Message, recipientIDs []string, attachments []*types.MessageAttachment) (*types.MessageThread, error) {
	thread := new(types.MessageThread)

	err := r.withTx(ctx, func(tx pgx.Tx) error {
		created, err := r.messages.WithDB(tx).Create(ctx, message)
		if err != nil {
			return err
		}
		thread.Message = *created

		seen := make(map[string]bool, len(recipientIDs))
		for _, recipientID := range recipientIDs {
			if seen[recipientID] {
				continue
			}
			seen[recipientID] = true

			recipient, err := r.recipients.WithDB(tx).Create(ctx, &types.MessageRecipient{
				MessageID:   created.ID,
				RecipientID: recipientID,
			})
			if err != nil {
				return err
			}
			thread.Recipients = append(thread.Recipients, recipient)
		}

		for _, a := range attachments {
			a.MessageID = created.ID
			attachment, err := r.attachments.WithDB(tx).Create(ctx, a)
			if err != nil {
				return err
			}
			thread.Attachments = append(thread.Attachments, attachment)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	if thread.Attachments == nil {
		thread.Attachments = make([]*types.MessageAttachment, 0)
	}

	return thread, nil
}

// Thread loads a message with all of its recipients and attachments.
func (r *MessageRepository) Thread(ctx context.Context, id string) (*types.MessageThread, error) {
	message, err := r.messages.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	recipients, err := r.recipients.List(ctx, sq.Eq{"message_id": id}, Page{})
	if err != nil {
		return nil, err
	}

	attachments, err := r.attachments.List(ctx, sq.Eq{"message_id": id}, Page{})
	if err != nil {
		return nil, err
	}

	return &types.MessageThread{
		Message:     *message,
		Recipients:  recipients,
		Attachments: attachments,
	}, nil
}

func (r *MessageRepository) Inbox(ctx context.Context, recipientID string, filter types.InboxFilter, page Page) ([]*types.InboxItem, error) {
	columns := append(utils.PrefixColumns("m", r.messages.Columns()),
		"r.read_at",
		"r.deleted_at",
		"p.full_name AS sender_name",
		"(SELECT COUNT(*) FROM "+messageAttachmentTableName+" a WHERE a.message_id = m.id) AS attachment_count",
	)

	where := sq.And{sq.Eq{"r.recipient_id": recipientID}}
	switch {
	case filter.OnlyDeleted:
		where = append(where, sq.NotEq{"r.deleted_at": nil})
	case !filter.IncludeDeleted:
		where = append(where, sq.Eq{"r.deleted_at": nil})
	}
	if filter.UnreadOnly {
		where = append(where, sq.Eq{"r.read_at": nil})
	}

	builder := psql().
		Select(columns...).
		From(messageRecipientTableName + " r").
		Join(messageTableName + " m ON m.id = r.message_id").
		LeftJoin(memberTableName + " p ON p.id = m.sender_id").
		Where(where).
		OrderBy("m.created_at DESC")

	query, args, err := page.apply(builder).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate inbox query: %w", err)
	}

	var items = make([]*types.InboxItem, 0)
	err = pgxscan.Select(ctx, r.db, &items, query, args...)
	if err != nil {
		return nil, wrapErr(err, "failed to list inbox")
	}

	return items, nil
}

func (r *MessageRepository) Sent(ctx context.Context, senderID string, page Page) ([]*types.Message, error) {
	return r.messages.List(ctx, sq.Eq{"sender_id": senderID}, page)
}

// MarkRead stamps read_at the first time a recipient reads the message and
// leaves it untouched afterwards.
func (r *MessageRepository) MarkRead(ctx context.Context, messageID, recipientID string) (*types.MessageRecipient, error) {
	now := r.recipients.now()
	return r.touchRecipient(ctx, messageID, recipientID,
		sq.Eq{"read_at": nil},
		types.Changes{{Column: "read_at", Value: now}},
	)
}

// SoftDelete hides the message from one recipient's inbox.
func (r *MessageRepository) SoftDelete(ctx context.Context, messageID, recipientID string) (*types.MessageRecipient, error) {
	now := r.recipients.now()
	return r.touchRecipient(ctx, messageID, recipientID,
		sq.Eq{"deleted_at": nil},
		types.Changes{{Column: "deleted_at", Value: now}},
	)
}

func (r *MessageRepository) Restore(ctx context.Context, messageID, recipientID string) (*types.MessageRecipient, error) {
	return r.touchRecipient(ctx, messageID, recipientID,
		sq.NotEq{"deleted_at": nil},
		types.Changes{{Column: "deleted_at", Value: nil}},
	)
}

// touchRecipient applies changes to the recipient row when guard holds. When
// the guard does not hold the row is returned as it is.
func (r *MessageRepository) touchRecipient(ctx context.Context, messageID, recipientID string, guard sq.Sqlizer, changes types.Changes) (*types.MessageRecipient, error) {
	key := sq.Eq{"message_id": messageID, "recipient_id": recipientID}

	builder := psql().Update(messageRecipientTableName)
	for _, c := range changes {
		builder = builder.Set(c.Column, c.Value)
	}

	query, args, err := builder.
		Set("updated_at", r.recipients.now()).
		Where(sq.And{key, guard}).
		Suffix(r.recipients.returning()).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate recipient update query: %w", err)
	}

	var recipient = new(types.MessageRecipient)
	err = pgxscan.Get(ctx, r.db, recipient, query, args...)
	if err == nil {
		return recipient, nil
	}

	err = wrapErr(err, "failed to update message recipient")
	if !errors.Is(err, types.ErrNotFound) {
		return nil, err
	}

	return r.recipients.FindOne(ctx, key)
}

func (r *MessageRepository) Attachment(ctx context.Context, messageID, attachmentID string) (*types.MessageAttachment, error) {
	return r.attachments.FindOne(ctx, sq.Eq{"id": attachmentID, "message_id": messageID})
}

// DeleteMessage removes the message with its recipients and attachments and
// returns the stored attachment paths so the caller can purge the files.
func (r *MessageRepository) DeleteMessage(ctx context.Context, id string) (bool, []string, error) {
	var (
		deleted bool
		paths   []string
	)

	err := r.withTx(ctx, func(tx pgx.Tx) error {
		attachments, err := r.attachments.WithDB(tx).List(ctx, sq.Eq{"message_id": id}, Page{})
		if err != nil {
			return err
		}
		for _, a := range attachments {
			paths = append(paths, a.FilePath)
		}

		if _, err := r.attachments.WithDB(tx).DeleteWhere(ctx, sq.Eq{"message_id": id}); err != nil {
			return err
		}
		if _, err := r.recipients.WithDB(tx).DeleteWhere(ctx, sq.Eq{"message_id": id}); err != nil {
			return err
		}

		deleted, err = r.messages.WithDB(tx).Delete(ctx, id)
		return err
	})
	if err != nil {
		return false, nil, err
	}

	if !deleted {
		return false, nil, nil
	}

	return true, paths, nil
}
