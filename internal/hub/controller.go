package hub

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/kindralabs/khub/internal/api"
	"github.com/kindralabs/khub/internal/events"
	"github.com/kindralabs/khub/internal/logging"
	"github.com/kindralabs/khub/internal/models"
)

// openRequestSubscription is the controller's id on the event bus.
const openRequestSubscription = "hub-controller"

// ErrMessageNotFound is returned when a delete targets an id missing from
// the current snapshot.
var ErrMessageNotFound = errors.New("hub: message not found")

// StreamSource is the fetch/submit boundary the controller polls against.
// *api.Client satisfies it.
type StreamSource interface {
	ListMessages(ctx context.Context) ([]models.ChatMessage, error)
	ListNotifications(ctx context.Context) ([]models.Notification, error)
	ListRecipients(ctx context.Context) ([]models.UserRef, error)
	SendMessage(ctx context.Context, req api.SendMessageRequest) (models.ChatMessage, error)
	DeleteMessage(ctx context.Context, id int64) error
	MarkNotificationsRead(ctx context.Context, ids []string) error
}

// ControllerConfig contains configuration for the hub controller.
type ControllerConfig struct {
	// PollInterval is the delay between sync cycles. Default: 20s.
	PollInterval time.Duration

	// ContentPreviewLength bounds chat-derived notification bodies.
	// Default: 50.
	ContentPreviewLength int

	// Role is the authenticated user's platform role, used to gate the
	// delete affordance.
	Role models.Role

	// Now overrides the clock, mainly for tests.
	Now func() time.Time
}

// DefaultControllerConfig returns sensible defaults.
func DefaultControllerConfig() ControllerConfig {
	return ControllerConfig{
		PollInterval:         20 * time.Second,
		ContentPreviewLength: 50,
		Role:                 models.RoleMember,
	}
}

// Snapshot is a point-in-time copy of the hub's observable state. Renderers
// read snapshots; they never see a half-merged cycle.
type Snapshot struct {
	State         VisibilityState
	Messages      []models.ChatMessage
	Notifications []models.Notification
	Recipients    []models.UserRef
	Ledger        Ledger
	LastSyncAt    time.Time
	LastSyncErr   string
}

// Controller owns the hub state machine. All mutation funnels through its
// lock: merge cycles, open/close transitions, and optimistic edits each apply
// atomically, and every observable change is announced on the event bus.
type Controller struct {
	config    ControllerConfig
	source    StreamSource
	bus       events.Publisher
	scheduler *Scheduler
	logger    zerolog.Logger

	mu            sync.RWMutex
	state         VisibilityState
	messages      []models.ChatMessage
	notifications []models.Notification
	recipients    []models.UserRef
	ledger        Ledger
	lastSyncAt    time.Time
	lastSyncErr   string

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewController creates a hub Controller. The visibility source gates
// polling only; the open/closed state machine is the controller's own.
func NewController(config ControllerConfig, source StreamSource, bus events.Publisher, visibility VisibilitySource) *Controller {
	if config.PollInterval <= 0 {
		config.PollInterval = DefaultControllerConfig().PollInterval
	}
	if config.ContentPreviewLength <= 0 {
		config.ContentPreviewLength = DefaultControllerConfig().ContentPreviewLength
	}
	if config.Role == "" {
		config.Role = models.RoleMember
	}
	if config.Now == nil {
		config.Now = time.Now
	}

	c := &Controller{
		config: config,
		source: source,
		bus:    bus,
		logger: logging.Component("hub-controller"),
		state:  StateClosed,
	}
	c.scheduler = NewScheduler(SchedulerConfig{Interval: config.PollInterval}, visibility, c.runCycle)
	return c
}

// Start begins syncing and wires the controller to open requests on the bus.
func (c *Controller) Start(ctx context.Context) error {
	c.ctx, c.cancel = context.WithCancel(ctx)

	if c.bus != nil {
		filter := events.Filter{EventTypes: []models.EventType{models.EventTypeHubOpenRequested}}
		if err := c.bus.Subscribe(openRequestSubscription, filter, c.handleOpenRequest); err != nil {
			return fmt.Errorf("subscribe open requests: %w", err)
		}
	}

	if err := c.scheduler.Start(c.ctx); err != nil {
		return err
	}

	c.logger.Info().Str("role", string(c.config.Role)).Msg("hub controller started")
	return nil
}

// Stop tears the controller down. In-flight cycles are waited out and their
// results discarded.
func (c *Controller) Stop() error {
	if c.cancel != nil {
		c.cancel()
	}
	if err := c.scheduler.Stop(); err != nil && !errors.Is(err, ErrSchedulerNotRunning) {
		return err
	}
	c.wg.Wait()
	if c.bus != nil {
		_ = c.bus.Unsubscribe(openRequestSubscription)
	}
	c.logger.Info().Msg("hub controller stopped")
	return nil
}

// SyncNow requests an out-of-band cycle.
func (c *Controller) SyncNow() error {
	return c.scheduler.SyncNow()
}

// Snapshot returns a copy of the current state. Slices are copied so the
// caller can render without racing the next merge.
func (c *Controller) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return Snapshot{
		State:         c.state,
		Messages:      append([]models.ChatMessage(nil), c.messages...),
		Notifications: append([]models.Notification(nil), c.notifications...),
		Recipients:    append([]models.UserRef(nil), c.recipients...),
		Ledger:        c.ledger,
		LastSyncAt:    c.lastSyncAt,
		LastSyncErr:   c.lastSyncErr,
	}
}

// State returns the current state machine position.
func (c *Controller) State() VisibilityState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Role returns the authenticated user's role.
func (c *Controller) Role() models.Role {
	return c.config.Role
}

// Open focuses the given surface, zeroing its unread counter. Opening the
// community surface also refreshes the private-message recipient list.
func (c *Controller) Open(tab models.Tab) {
	c.mu.Lock()
	prev := c.state
	prevLedger := c.ledger
	c.state = StateForTab(tab)
	c.ledger = c.ledger.ResetForTab(tab)
	next := c.state
	ledger := c.ledger
	c.mu.Unlock()

	if next != prev {
		c.publishState(next, tab)
	}
	if ledger != prevLedger {
		c.publishUnread(ledger)
	}

	if tab == models.TabCommunity {
		c.refreshRecipientsAsync()
	}
}

// SwitchTab moves focus between the open hub's tabs. It has no effect while
// the hub is closed; opening is an explicit action.
func (c *Controller) SwitchTab(tab models.Tab) {
	c.mu.Lock()
	closed := c.state == StateClosed
	c.mu.Unlock()
	if closed {
		return
	}
	c.Open(tab)
}

// Close collapses the hub. Unread counters survive; only focus resets them.
func (c *Controller) Close() {
	c.mu.Lock()
	prev := c.state
	c.state = StateClosed
	c.mu.Unlock()

	if prev != StateClosed {
		c.publishState(StateClosed, "")
	}
}

// Send validates and submits a chat message. The created message is appended
// locally so the sender sees it before the next cycle confirms it.
func (c *Controller) Send(ctx context.Context, content string, private bool, recipientID string) (models.ChatMessage, error) {
	if err := ValidateSend(content, private, recipientID); err != nil {
		return models.ChatMessage{}, err
	}

	req := api.SendMessageRequest{Content: content}
	if private {
		req.IsPrivate = true
		req.Recipient = recipientID
	}

	created, err := c.source.SendMessage(ctx, req)
	if err != nil {
		return models.ChatMessage{}, fmt.Errorf("send message: %w", err)
	}

	c.mu.Lock()
	if created.ID > models.LastMessageID(c.messages) {
		c.messages = append(c.messages, created)
	}
	c.mu.Unlock()

	_ = c.SyncNow()
	return created, nil
}

// Delete removes a chat message if the current role is allowed to. The entry
// is dropped locally right away; the next cycle confirms against the server.
func (c *Controller) Delete(ctx context.Context, id int64) error {
	c.mu.RLock()
	var target *models.ChatMessage
	for i := range c.messages {
		if c.messages[i].ID == id {
			target = &c.messages[i]
			break
		}
	}
	c.mu.RUnlock()

	if target == nil {
		return ErrMessageNotFound
	}
	if !CanDelete(*target, c.config.Role) {
		return ErrDeleteForbidden
	}

	if err := c.source.DeleteMessage(ctx, id); err != nil {
		return fmt.Errorf("delete message %d: %w", id, err)
	}

	c.mu.Lock()
	kept := c.messages[:0]
	for _, m := range c.messages {
		if m.ID != id {
			kept = append(kept, m)
		}
	}
	c.messages = kept
	c.mu.Unlock()

	_ = c.SyncNow()
	return nil
}

// CanDeleteMessage reports whether the delete affordance should show for a
// message under the current role.
func (c *Controller) CanDeleteMessage(msg models.ChatMessage) bool {
	return CanDelete(msg, c.config.Role)
}

// MarkRead marks notifications read, locally at once and server-side for the
// ids the server knows about. Chat-derived entries exist only in this session
// and are never sent upstream.
func (c *Controller) MarkRead(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}

	var serverIDs []string
	c.mu.Lock()
	prevLedger := c.ledger
	for i := range c.notifications {
		n := &c.notifications[i]
		if !want[n.ID] || n.Read {
			continue
		}
		n.Read = true
		if n.Category != models.CategoryChat {
			serverIDs = append(serverIDs, n.ID)
		}
	}
	if c.state != StateOpenActivity {
		c.ledger.NotifUnread = models.CountUnread(c.notifications)
	} else {
		c.ledger.NotifUnread = 0
	}
	ledger := c.ledger
	c.mu.Unlock()

	if ledger != prevLedger {
		c.publishUnread(ledger)
	}

	if err := c.source.MarkNotificationsRead(ctx, serverIDs); err != nil {
		return fmt.Errorf("mark notifications read: %w", err)
	}
	return nil
}

// MarkAllRead marks every unread notification read.
func (c *Controller) MarkAllRead(ctx context.Context) error {
	c.mu.RLock()
	var ids []string
	for _, n := range c.notifications {
		if !n.Read {
			ids = append(ids, n.ID)
		}
	}
	c.mu.RUnlock()
	return c.MarkRead(ctx, ids)
}

// RefreshRecipients synchronously refetches the private-message targets.
func (c *Controller) RefreshRecipients(ctx context.Context) error {
	users, err := c.source.ListRecipients(ctx)
	if err != nil {
		return fmt.Errorf("list recipients: %w", err)
	}
	c.mu.Lock()
	c.recipients = users
	c.mu.Unlock()
	return nil
}

func (c *Controller) refreshRecipientsAsync() {
	if c.ctx == nil || c.ctx.Err() != nil {
		return
	}
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		if err := c.RefreshRecipients(c.ctx); err != nil && !errors.Is(err, context.Canceled) {
			c.logger.Warn().Err(err).Msg("recipient refresh failed")
		}
	}()
}

// runCycle is one sync cycle: both streams are fetched concurrently, then
// merged under the lock in a single step. A failed fetch leaves its stream's
// previous snapshot in place.
func (c *Controller) runCycle(ctx context.Context) {
	var (
		msgs      []models.ChatMessage
		notifs    []models.Notification
		msgErr    error
		notifErr  error
		fetchWait sync.WaitGroup
	)

	fetchWait.Add(2)
	go func() {
		defer fetchWait.Done()
		msgs, msgErr = c.source.ListMessages(ctx)
	}()
	go func() {
		defer fetchWait.Done()
		notifs, notifErr = c.source.ListNotifications(ctx)
	}()
	fetchWait.Wait()

	// Teardown beat us to it; the results must not land.
	if ctx.Err() != nil {
		return
	}

	if msgErr != nil && !errors.Is(msgErr, context.Canceled) {
		c.logger.Warn().Err(msgErr).Msg("message fetch failed")
	}
	if notifErr != nil && !errors.Is(notifErr, context.Canceled) {
		c.logger.Warn().Err(notifErr).Msg("notification fetch failed")
	}

	c.mu.Lock()
	state := c.state
	prevLedger := c.ledger

	var delta ChatDelta
	if msgErr == nil {
		delta = DiffChat(c.messages, msgs)
		c.messages = msgs
	}
	if notifErr == nil {
		c.notifications = notifs
	}

	if delta.NewInbound && state != StateOpenCommunity {
		synth := SynthesizeChatNotification(delta.Latest, c.config.ContentPreviewLength, c.config.Now())
		c.notifications = UpsertChatNotification(c.notifications, synth)
	}

	c.ledger = NextLedger(prevLedger, delta, c.notifications, state)
	ledger := c.ledger
	c.lastSyncAt = c.config.Now()
	c.lastSyncErr = cycleErrString(msgErr, notifErr)
	c.mu.Unlock()

	c.publish(&models.Event{
		Type:        models.EventTypeCycleCompleted,
		Timestamp:   c.config.Now(),
		ChatUnread:  ledger.ChatUnread,
		NotifUnread: ledger.NotifUnread,
	})
	if delta.NewInbound {
		c.publish(&models.Event{
			Type:      models.EventTypeMessageArrived,
			Tab:       models.TabCommunity,
			Timestamp: c.config.Now(),
		})
	}
	if ledger != prevLedger {
		c.publishUnread(ledger)
	}
}

func (c *Controller) handleOpenRequest(event *models.Event) {
	tab := event.Tab
	if tab == "" {
		tab = models.TabActivity
	}
	c.Open(tab)
}

func (c *Controller) publishState(state VisibilityState, tab models.Tab) {
	c.logger.Debug().Str("state", state.String()).Msg("state changed")
	c.publish(&models.Event{
		Type:      models.EventTypeHubStateChanged,
		Tab:       tab,
		Timestamp: c.config.Now(),
	})
}

func (c *Controller) publishUnread(ledger Ledger) {
	c.publish(&models.Event{
		Type:        models.EventTypeUnreadChanged,
		Timestamp:   c.config.Now(),
		ChatUnread:  ledger.ChatUnread,
		NotifUnread: ledger.NotifUnread,
	})
}

func (c *Controller) publish(event *models.Event) {
	if c.bus == nil {
		return
	}
	c.bus.Publish(event)
}

func cycleErrString(errs ...error) string {
	var parts []string
	for _, err := range errs {
		if err != nil && !errors.Is(err, context.Canceled) {
			parts = append(parts, err.Error())
		}
	}
	return strings.Join(parts, "; ")
}
