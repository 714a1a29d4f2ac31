package notification

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ListLimit caps how many notifications a user sees at once.
const ListLimit = 20

type Notification struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Content   string             `bson:"content" json:"content"`
	User      int64              `bson:"user" json:"user"`
	Read      bool               `bson:"read" json:"read"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

type Store interface {
	Insert(ctx context.Context, n *Notification) error
	ListForUser(ctx context.Context, userID int64, limit int64) ([]Notification, error)
	// MarkRead flags the notification as read when it belongs to userID.
	MarkRead(ctx context.Context, id string, userID int64, at time.Time) (*Notification, error)
}

var ErrEmptyContent = errors.New("notification: empty content")

type Service struct {
	store Store
	now   func() time.Time
	log   *logrus.Logger
}

func NewService(store Store, log *logrus.Logger) *Service {
	if store == nil {
		panic("notification: store required")
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{store: store, now: time.Now, log: log}
}

// Notify records a new unread notification for userID.
func (s *Service) Notify(ctx context.Context, userID int64, content string) error {
	content = strings.TrimSpace(content)
	if content == "" {
		return ErrEmptyContent
	}
	now := s.now().UTC()
	n := &Notification{
		Content:   content,
		User:      userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Insert(ctx, n); err != nil {
		return fmt.Errorf("notification: insert: %w", err)
	}
	s.log.WithFields(logrus.Fields{"user_id": userID, "notification_id": n.ID.Hex()}).Debug("notification stored")
	return nil
}

// List returns the newest notifications for userID.
func (s *Service) List(ctx context.Context, userID int64) ([]Notification, error) {
	out, err := s.store.ListForUser(ctx, userID, ListLimit)
	if err != nil {
		return nil, fmt.Errorf("notification: list: %w", err)
	}
	if out == nil {
		out = []Notification{}
	}
	return out, nil
}

func (s *Service) MarkRead(ctx context.Context, id string, userID int64) (*Notification, error) {
	return s.store.MarkRead(ctx, id, userID, s.now().UTC())
}
