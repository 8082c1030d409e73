package services

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Joaquin123L/eventhub/internal/status"
	"github.com/Joaquin123L/eventhub/models"
)

// memStore is an in-memory Store. RunInTx snapshots the data and restores it
// when fn fails, which is enough to observe rollbacks in tests.
type memStore struct {
	mu  sync.Mutex
	seq int

	events        map[string]models.Event
	venues        map[string]models.Venue
	categories    map[string]models.Category
	tickets       map[string]models.Ticket
	discounts     map[string]models.DiscountCode
	notifications map[string]models.Notification
	recipients    map[string]models.NotificationUser
	refunds       map[string]models.RefundRequest
	favorites     map[string]models.Favorite
	ratings       map[string]models.Rating
	comments      map[string]models.Comment
	surveys       map[string]models.SatisfactionSurvey

	// failOn makes the named method return an error.
	failOn map[string]error
	saves  int
	// onTx runs once at the start of the next RunInTx, before fn.
	onTx func()
}

func newMemStore() *memStore {
	return &memStore{
		events:        map[string]models.Event{},
		venues:        map[string]models.Venue{},
		categories:    map[string]models.Category{},
		tickets:       map[string]models.Ticket{},
		discounts:     map[string]models.DiscountCode{},
		notifications: map[string]models.Notification{},
		recipients:    map[string]models.NotificationUser{},
		refunds:       map[string]models.RefundRequest{},
		favorites:     map[string]models.Favorite{},
		ratings:       map[string]models.Rating{},
		comments:      map[string]models.Comment{},
		surveys:       map[string]models.SatisfactionSurvey{},
		failOn:        map[string]error{},
	}
}

func (m *memStore) nextID(prefix string) string {
	m.seq++
	return fmt.Sprintf("%s%d", prefix, m.seq)
}

func (m *memStore) fail(op string) error {
	return m.failOn[op]
}

func (m *memStore) RunInTx(ctx context.Context, fn func(tx Store) error) error {
	m.mu.Lock()
	hook := m.onTx
	m.onTx = nil
	m.mu.Unlock()
	if hook != nil {
		hook()
	}

	m.mu.Lock()
	snap := m.snapshot()
	m.mu.Unlock()

	if err := fn(m); err != nil {
		m.mu.Lock()
		m.restore(snap)
		m.mu.Unlock()
		return err
	}
	return nil
}

type memSnapshot struct {
	events        map[string]models.Event
	tickets       map[string]models.Ticket
	notifications map[string]models.Notification
	recipients    map[string]models.NotificationUser
	refunds       map[string]models.RefundRequest
}

func (m *memStore) snapshot() memSnapshot {
	return memSnapshot{
		events:        maps.Clone(m.events),
		tickets:       maps.Clone(m.tickets),
		notifications: maps.Clone(m.notifications),
		recipients:    maps.Clone(m.recipients),
		refunds:       maps.Clone(m.refunds),
	}
}

func (m *memStore) restore(s memSnapshot) {
	m.events = s.events
	m.tickets = s.tickets
	m.notifications = s.notifications
	m.recipients = s.recipients
	m.refunds = s.refunds
}

// Events

func (m *memStore) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.events[id]
	if !ok {
		return nil, status.ErrNotFound
	}
	return &e, nil
}

func (m *memStore) CreateEvent(ctx context.Context, e *models.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("CreateEvent"); err != nil {
		return err
	}
	if e.ID == "" {
		e.ID = m.nextID("evt")
	}
	m.events[e.ID] = *e
	return nil
}

func (m *memStore) SaveEvent(ctx context.Context, e *models.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("SaveEvent"); err != nil {
		return err
	}
	m.saves++
	m.events[e.ID] = *e
	return nil
}

func (m *memStore) SetEventStatus(ctx context.Context, id string, from, to models.EventStatus) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("SetEventStatus"); err != nil {
		return false, err
	}
	e, ok := m.events[id]
	if !ok {
		return false, status.ErrNotFound
	}
	if e.Status != from {
		return false, nil
	}
	m.saves++
	e.Status = to
	m.events[id] = e
	return true, nil
}

func (m *memStore) DeleteEvent(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.events, id)
	for k, t := range m.tickets {
		if t.EventID == id {
			delete(m.tickets, k)
		}
	}
	return nil
}

func (m *memStore) ListEvents(ctx context.Context, q models.EventQuery, now time.Time) ([]models.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Event
	for _, e := range m.events {
		if q.Organizer && e.OrganizerID != q.ViewerID {
			continue
		}
		if !q.IncludePast && (e.ScheduledAt.Before(now) || e.Status.Closed()) {
			continue
		}
		if q.CategoryID != "" && e.CategoryID != q.CategoryID {
			continue
		}
		if q.VenueID != "" && e.VenueID != q.VenueID {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if q.Descending {
			return out[i].ScheduledAt.After(out[j].ScheduledAt)
		}
		return out[i].ScheduledAt.Before(out[j].ScheduledAt)
	})
	return out, nil
}

// Venues and categories

func (m *memStore) GetVenue(ctx context.Context, id string) (*models.Venue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.venues[id]
	if !ok {
		return nil, status.ErrNotFound
	}
	return &v, nil
}

func (m *memStore) ListVenues(ctx context.Context) ([]models.Venue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Collect(maps.Values(m.venues)), nil
}

func (m *memStore) CreateVenue(ctx context.Context, v *models.Venue) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	v.ID = m.nextID("ven")
	m.venues[v.ID] = *v
	return nil
}

func (m *memStore) SaveVenue(ctx context.Context, v *models.Venue) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.venues[v.ID] = *v
	return nil
}

func (m *memStore) DeleteVenue(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.venues, id)
	return nil
}

func (m *memStore) GetCategory(ctx context.Context, id string) (*models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.categories[id]
	if !ok {
		return nil, status.ErrNotFound
	}
	return &c, nil
}

func (m *memStore) ListCategories(ctx context.Context) ([]models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Collect(maps.Values(m.categories)), nil
}

func (m *memStore) CreateCategory(ctx context.Context, c *models.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c.ID = m.nextID("cat")
	m.categories[c.ID] = *c
	return nil
}

func (m *memStore) SaveCategory(ctx context.Context, c *models.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.categories[c.ID] = *c
	return nil
}

func (m *memStore) DeleteCategory(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.categories, id)
	return nil
}

func (m *memStore) CountEventsInCategory(ctx context.Context, categoryID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.events {
		if e.CategoryID == categoryID {
			n++
		}
	}
	return n, nil
}

// Tickets

func (m *memStore) GetTicket(ctx context.Context, id string) (*models.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tickets[id]
	if !ok {
		return nil, status.ErrNotFound
	}
	return &t, nil
}

func (m *memStore) CreateTicket(ctx context.Context, t *models.Ticket) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("CreateTicket"); err != nil {
		return err
	}
	for _, other := range m.tickets {
		if other.Code == t.Code {
			return status.ErrConflict
		}
	}
	if t.ID == "" {
		t.ID = m.nextID("tkt")
	}
	m.tickets[t.ID] = *t
	return nil
}

func (m *memStore) SaveTicket(ctx context.Context, t *models.Ticket) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tickets[t.ID] = *t
	return nil
}

func (m *memStore) DeleteTicket(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tickets, id)
	return nil
}

func (m *memStore) ListTicketsByUser(ctx context.Context, userID string) ([]models.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Ticket
	for _, t := range m.tickets {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) ListTicketsByEvent(ctx context.Context, eventID string) ([]models.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Ticket
	for _, t := range m.tickets {
		if t.EventID == eventID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) SumQuantity(ctx context.Context, eventID, userID, excludeID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("SumQuantity"); err != nil {
		return 0, err
	}
	total := 0
	for _, t := range m.tickets {
		if t.EventID != eventID || t.ID == excludeID {
			continue
		}
		if userID != "" && t.UserID != userID {
			continue
		}
		total += t.Quantity
	}
	return total, nil
}

func (m *memStore) TicketHolders(ctx context.Context, eventID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seen := map[string]bool{}
	var out []string
	for _, t := range m.tickets {
		if t.EventID == eventID && !seen[t.UserID] {
			seen[t.UserID] = true
			out = append(out, t.UserID)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (m *memStore) GetDiscountCode(ctx context.Context, id string) (*models.DiscountCode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.discounts[id]
	if !ok {
		return nil, status.ErrNotFound
	}
	return &d, nil
}

func (m *memStore) FindDiscountCode(ctx context.Context, eventID, code string) (*models.DiscountCode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.discounts {
		if d.EventID == eventID && d.Code == code {
			return &d, nil
		}
	}
	return nil, status.ErrNotFound
}

func (m *memStore) ListDiscountCodes(ctx context.Context, eventID string) ([]models.DiscountCode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.DiscountCode
	for _, d := range m.discounts {
		if d.EventID == eventID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *memStore) CreateDiscountCode(ctx context.Context, d *models.DiscountCode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, other := range m.discounts {
		if other.EventID == d.EventID && other.Code == d.Code {
			return status.ErrConflict
		}
	}
	if d.ID == "" {
		d.ID = m.nextID("dsc")
	}
	m.discounts[d.ID] = *d
	return nil
}

func (m *memStore) DeleteDiscountCode(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.discounts, id)
	for k, t := range m.tickets {
		if t.DiscountCodeID == id {
			t.DiscountCodeID = ""
			m.tickets[k] = t
		}
	}
	return nil
}

// Notifications

func (m *memStore) CreateNotification(ctx context.Context, n *models.Notification, users []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("CreateNotification"); err != nil {
		return err
	}
	n.ID = m.nextID("ntf")
	m.notifications[n.ID] = *n
	for _, u := range users {
		id := m.nextID("nu")
		m.recipients[id] = models.NotificationUser{ID: id, NotificationID: n.ID, UserID: u}
	}
	return nil
}

func (m *memStore) recipientsOf(id string) []string {
	var users []string
	for _, nu := range m.recipients {
		if nu.NotificationID == id {
			users = append(users, nu.UserID)
		}
	}
	sort.Strings(users)
	return users
}

func (m *memStore) GetNotification(ctx context.Context, id string) (*models.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notifications[id]
	if !ok {
		return nil, status.ErrNotFound
	}
	n.Recipients = m.recipientsOf(id)
	return &n, nil
}

func (m *memStore) SaveNotification(ctx context.Context, n *models.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := *n
	stored.Recipients = nil
	m.notifications[n.ID] = stored
	return nil
}

func (m *memStore) ReplaceRecipients(ctx context.Context, notificationID string, users []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("ReplaceRecipients"); err != nil {
		return err
	}
	for k, nu := range m.recipients {
		if nu.NotificationID == notificationID {
			delete(m.recipients, k)
		}
	}
	for _, u := range users {
		id := m.nextID("nu")
		m.recipients[id] = models.NotificationUser{ID: id, NotificationID: notificationID, UserID: u}
	}
	return nil
}

func (m *memStore) DeleteNotification(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.notifications, id)
	for k, nu := range m.recipients {
		if nu.NotificationID == id {
			delete(m.recipients, k)
		}
	}
	return nil
}

func (m *memStore) ListNotifications(ctx context.Context, f models.NotificationFilter) ([]models.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Notification
	for _, n := range m.notifications {
		if f.Search != "" && !strings.Contains(strings.ToLower(n.Title), strings.ToLower(f.Search)) {
			continue
		}
		if f.EventID != "" && n.EventID != f.EventID {
			continue
		}
		if f.Priority != "" && n.Priority != f.Priority {
			continue
		}
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memStore) ListInbox(ctx context.Context, userID string) ([]models.InboxItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.InboxItem
	for _, nu := range m.recipients {
		if nu.UserID == userID {
			out = append(out, models.InboxItem{NotificationUser: nu, Notification: m.notifications[nu.NotificationID]})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Notification.CreatedAt.After(out[j].Notification.CreatedAt)
	})
	return out, nil
}

func (m *memStore) GetNotificationUser(ctx context.Context, id string) (*models.NotificationUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	nu, ok := m.recipients[id]
	if !ok {
		return nil, status.ErrNotFound
	}
	return &nu, nil
}

func (m *memStore) MarkRead(ctx context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	nu := m.recipients[id]
	nu.Read = true
	nu.ReadAt = &at
	m.recipients[id] = nu
	return nil
}

func (m *memStore) MarkAllRead(ctx context.Context, userID string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, nu := range m.recipients {
		if nu.UserID == userID && !nu.Read {
			nu.Read = true
			nu.ReadAt = &at
			m.recipients[k] = nu
		}
	}
	return nil
}

// Refunds

func (m *memStore) GetRefund(ctx context.Context, id string) (*models.RefundRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.refunds[id]
	if !ok {
		return nil, status.ErrNotFound
	}
	return &r, nil
}

func (m *memStore) CreateRefund(ctx context.Context, r *models.RefundRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, other := range m.refunds {
		if other.TicketCode == r.TicketCode {
			return status.ErrConflict
		}
	}
	r.ID = m.nextID("ref")
	m.refunds[r.ID] = *r
	return nil
}

func (m *memStore) SaveRefund(ctx context.Context, r *models.RefundRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refunds[r.ID] = *r
	return nil
}

func (m *memStore) DeleteRefund(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.refunds, id)
	return nil
}

func (m *memStore) ListRefunds(ctx context.Context, userID string) ([]models.RefundRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.RefundRequest
	for _, r := range m.refunds {
		if userID == "" || r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memStore) HasPendingRefund(ctx context.Context, userID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.refunds {
		if r.UserID == userID && r.Status == models.RefundPending {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) RefundExistsForTicket(ctx context.Context, ticketCode string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.refunds {
		if r.TicketCode == ticketCode {
			return true, nil
		}
	}
	return false, nil
}

// Feedback

func (m *memStore) FindFavorite(ctx context.Context, userID, eventID string) (*models.Favorite, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, f := range m.favorites {
		if f.UserID == userID && f.EventID == eventID {
			return &f, nil
		}
	}
	return nil, status.ErrNotFound
}

func (m *memStore) CreateFavorite(ctx context.Context, f *models.Favorite) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	f.ID = m.nextID("fav")
	m.favorites[f.ID] = *f
	return nil
}

func (m *memStore) DeleteFavorite(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.favorites, id)
	return nil
}

func (m *memStore) FavoriteEventIDs(ctx context.Context, userID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, f := range m.favorites {
		if f.UserID == userID {
			out = append(out, f.EventID)
		}
	}
	return out, nil
}

func (m *memStore) GetRating(ctx context.Context, id string) (*models.Rating, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.ratings[id]
	if !ok {
		return nil, status.ErrNotFound
	}
	return &r, nil
}

func (m *memStore) FindRating(ctx context.Context, userID, eventID string) (*models.Rating, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.ratings {
		if r.UserID == userID && r.EventID == eventID {
			return &r, nil
		}
	}
	return nil, status.ErrNotFound
}

func (m *memStore) CreateRating(ctx context.Context, r *models.Rating) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("CreateRating"); err != nil {
		return err
	}
	r.ID = m.nextID("rat")
	m.ratings[r.ID] = *r
	return nil
}

func (m *memStore) SaveRating(ctx context.Context, r *models.Rating) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ratings[r.ID] = *r
	return nil
}

func (m *memStore) DeleteRating(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.ratings, id)
	return nil
}

func (m *memStore) ListRatings(ctx context.Context, eventID string) ([]models.Rating, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Rating
	for _, r := range m.ratings {
		if r.EventID == eventID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memStore) GetComment(ctx context.Context, id string) (*models.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.comments[id]
	if !ok {
		return nil, status.ErrNotFound
	}
	return &c, nil
}

func (m *memStore) CreateComment(ctx context.Context, c *models.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c.ID = m.nextID("com")
	m.comments[c.ID] = *c
	return nil
}

func (m *memStore) SaveComment(ctx context.Context, c *models.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.comments[c.ID] = *c
	return nil
}

func (m *memStore) DeleteComment(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.comments, id)
	return nil
}

func (m *memStore) ListComments(ctx context.Context, eventID string) ([]models.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Comment
	for _, c := range m.comments {
		if c.EventID == eventID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memStore) ListCommentsForOrganizer(ctx context.Context, organizerID string) ([]models.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Comment
	for _, c := range m.comments {
		if m.events[c.EventID].OrganizerID == organizerID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memStore) FindSurvey(ctx context.Context, ticketID string) (*models.SatisfactionSurvey, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.surveys {
		if s.TicketID == ticketID {
			return &s, nil
		}
	}
	return nil, status.ErrNotFound
}

func (m *memStore) CreateSurvey(ctx context.Context, s *models.SatisfactionSurvey) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("CreateSurvey"); err != nil {
		return err
	}
	s.ID = m.nextID("srv")
	m.surveys[s.ID] = *s
	return nil
}

// Helpers shared by the service tests.

var testNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

func intPtr(v int) *int { return &v }

func (m *memStore) addEvent(e models.Event) *models.Event {
	if e.Status == "" {
		e.Status = models.StatusActive
	}
	if e.ScheduledAt.IsZero() {
		e.ScheduledAt = testNow.Add(10 * 24 * time.Hour)
	}
	if e.Title == "" {
		e.Title = "Concierto"
	}
	_ = m.CreateEvent(context.Background(), &e)
	return &e
}

func (m *memStore) addTicket(t models.Ticket) *models.Ticket {
	if t.Type == "" {
		t.Type = models.TicketGeneral
	}
	if t.Code == "" {
		m.mu.Lock()
		t.Code = m.nextID("CODE-")
		m.mu.Unlock()
	}
	_ = m.CreateTicket(context.Background(), &t)
	return &t
}

func (m *memStore) statusOf(eventID string) models.EventStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.events[eventID].Status
}

// memLocker serializes per event within the process.
type memLocker struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
	calls int
	err   error
	// onLock runs once before the next lock is taken, standing in for
	// whatever else happens while a caller waits.
	onLock func()
}

func newMemLocker() *memLocker {
	return &memLocker{locks: map[string]*sync.Mutex{}}
}

func (l *memLocker) Lock(ctx context.Context, eventID string) (func(), error) {
	l.mu.Lock()
	hook := l.onLock
	l.onLock = nil
	l.mu.Unlock()
	if hook != nil {
		hook()
	}

	l.mu.Lock()
	if l.err != nil {
		l.mu.Unlock()
		return nil, l.err
	}
	l.calls++
	mu, ok := l.locks[eventID]
	if !ok {
		mu = &sync.Mutex{}
		l.locks[eventID] = mu
	}
	l.mu.Unlock()

	mu.Lock()
	return mu.Unlock, nil
}

// recordingPublisher captures realtime pushes.
type recordingPublisher struct {
	mu       sync.Mutex
	channels []string
	err      error
}

func (p *recordingPublisher) Publish(ctx context.Context, channel string, message any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.channels = append(p.channels, channel)
	return p.err
}
