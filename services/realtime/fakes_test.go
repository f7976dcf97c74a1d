package realtime

import (
	"context"
	"errors"
	"sync"
	"time"

	notificationRepo "vecindo/database/repository/notification"
	"vecindo/models"
)

// recordedEvent is one push captured by a fake pusher.
type recordedEvent struct {
	Event   string
	Payload any
}

// fakePusher records everything pushed to it. Setting fail makes every push
// error, simulating a dead connection.
type fakePusher struct {
	mu     sync.Mutex
	events []recordedEvent
	fail   bool
}

func (p *fakePusher) Push(event string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail {
		return errors.New("connection closed")
	}
	p.events = append(p.events, recordedEvent{Event: event, Payload: payload})
	return nil
}

func (p *fakePusher) recorded() []recordedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]recordedEvent, len(p.events))
	copy(out, p.events)
	return out
}

func (p *fakePusher) countOf(event string) int {
	count := 0
	for _, e := range p.recorded() {
		if e.Event == event {
			count++
		}
	}
	return count
}

// fakeNotificationRepo is an in-memory NotificationRepository.
type fakeNotificationRepo struct {
	mu            sync.Mutex
	notifications []*models.Notification
	confirmations map[string]map[string]bool // notificationID -> userID
	createErrFor  map[string]error           // recipientID -> forced Create error
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{
		confirmations: make(map[string]map[string]bool),
		createErrFor:  make(map[string]error),
	}
}

func (r *fakeNotificationRepo) Create(n *models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.createErrFor[n.RecipientID]; err != nil {
		return err
	}
	clone := *n
	r.notifications = append(r.notifications, &clone)
	return nil
}

func (r *fakeNotificationRepo) FindUnreadByUser(userID string) ([]models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Notification
	for i := len(r.notifications) - 1; i >= 0; i-- {
		n := r.notifications[i]
		if n.RecipientID == userID && !n.Read {
			out = append(out, *n)
		}
	}
	return out, nil
}

func (r *fakeNotificationRepo) FindByUser(userID string, filter models.NotificationFilter) ([]models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Notification
	for i := len(r.notifications) - 1; i >= 0; i-- {
		n := r.notifications[i]
		if n.RecipientID != userID {
			continue
		}
		if filter.Read != nil && n.Read != *filter.Read {
			continue
		}
		if filter.Type != "" && n.Type != filter.Type {
			continue
		}
		if filter.Priority != "" && n.Priority != filter.Priority {
			continue
		}
		out = append(out, *n)
		if filter.Limit > 0 && int64(len(out)) >= filter.Limit {
			break
		}
	}
	return out, nil
}

func (r *fakeNotificationRepo) FindOwned(id, userID string) (*models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.notifications {
		if n.ID == id && n.RecipientID == userID {
			clone := *n
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *fakeNotificationRepo) FindByID(id string) (*models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.notifications {
		if n.ID == id {
			clone := *n
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *fakeNotificationRepo) MarkRead(id string) (*models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.notifications {
		if n.ID == id {
			now := time.Now()
			n.Read = true
			n.ReadAt = &now
			clone := *n
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *fakeNotificationRepo) MarkAllRead(userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	now := time.Now()
	for _, n := range r.notifications {
		if n.RecipientID == userID && !n.Read {
			n.Read = true
			n.ReadAt = &now
			count++
		}
	}
	return count, nil
}

func (r *fakeNotificationRepo) CreateConfirmation(c *models.NotificationConfirmation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	users, ok := r.confirmations[c.NotificationID]
	if !ok {
		users = make(map[string]bool)
		r.confirmations[c.NotificationID] = users
	}
	if users[c.UserID] {
		return notificationRepo.ErrDuplicateConfirmation
	}
	users[c.UserID] = true
	return nil
}

func (r *fakeNotificationRepo) CountConfirmations(notificationID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.confirmations[notificationID]), nil
}

func (r *fakeNotificationRepo) DeleteExpired(before time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var kept []*models.Notification
	var deleted int64
	for _, n := range r.notifications {
		if n.ExpiresAt != nil && n.ExpiresAt.Before(before) {
			deleted++
			continue
		}
		kept = append(kept, n)
	}
	r.notifications = kept
	return deleted, nil
}

func (r *fakeNotificationRepo) byRecipient(userID string) []*models.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Notification
	for _, n := range r.notifications {
		if n.RecipientID == userID {
			out = append(out, n)
		}
	}
	return out
}

// fakeDirectory is an in-memory UserDirectory.
type fakeDirectory struct {
	users map[string]*models.User
}

func newFakeDirectory(users ...*models.User) *fakeDirectory {
	d := &fakeDirectory{users: make(map[string]*models.User)}
	for _, u := range users {
		d.users[u.ID] = u
	}
	return d
}

func (d *fakeDirectory) GetByID(id string) (*models.User, error) {
	u, ok := d.users[id]
	if !ok {
		return nil, nil
	}
	clone := *u
	return &clone, nil
}

func (d *fakeDirectory) UsersWithRole(role string) ([]string, error) {
	var ids []string
	for id, u := range d.users {
		if u.Role == role {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (d *fakeDirectory) UsersInUnit(unitID string) ([]string, error) {
	var ids []string
	for id, u := range d.users {
		if u.UnitID == unitID {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (d *fakeDirectory) AllUserIDs() ([]string, error) {
	ids := make([]string, 0, len(d.users))
	for id := range d.users {
		ids = append(ids, id)
	}
	return ids, nil
}

func (d *fakeDirectory) CountWithRole(role string) (int, error) {
	ids, _ := d.UsersWithRole(role)
	return len(ids), nil
}

func (d *fakeDirectory) CountInUnit(unitID string) (int, error) {
	ids, _ := d.UsersInUnit(unitID)
	return len(ids), nil
}

func (d *fakeDirectory) CountAll() (int, error) {
	return len(d.users), nil
}

// fakeMessageRepo is an in-memory MessageRepository.
type fakeMessageRepo struct {
	mu       sync.Mutex
	messages []*models.Message
	failNext bool
}

func (r *fakeMessageRepo) Create(m *models.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failNext {
		r.failNext = false
		return errors.New("write failed")
	}
	clone := *m
	r.messages = append(r.messages, &clone)
	return nil
}

func (r *fakeMessageRepo) FindBetween(userA, userB string, limit int64) ([]models.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Message
	for i := len(r.messages) - 1; i >= 0; i-- {
		m := r.messages[i]
		if (m.SenderID == userA && m.RecipientID == userB) || (m.SenderID == userB && m.RecipientID == userA) {
			out = append(out, *m)
			if limit > 0 && int64(len(out)) >= limit {
				break
			}
		}
	}
	return out, nil
}

// fakePublisher records backplane publishes.
type fakePublisher struct {
	mu        sync.Mutex
	published []recordedEvent
	userIDs   []string
}

func (p *fakePublisher) PublishToUser(_ context.Context, userID, event string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.published = append(p.published, recordedEvent{Event: event, Payload: payload})
	p.userIDs = append(p.userIDs, userID)
	return nil
}
