package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/aetherboard/aetherboard/internal/domain"
	"github.com/aetherboard/aetherboard/internal/realtime"
	"github.com/aetherboard/aetherboard/internal/service"
	apperrors "github.com/aetherboard/aetherboard/pkg/util/errorutil"
)

const defaultOutboundSize = 64

var errPeerClosed = errors.New("chat: peer closed")

// Conn is the socket a session talks over. *websocket.Conn satisfies it.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteJSON(v any) error
	Close() error
}

// Messages is the message service as seen by a session.
type Messages interface {
	ValidateRoom(room string) error
	ListRoom(ctx context.Context, room string) ([]domain.Message, error)
	Send(ctx context.Context, in service.SendMessageInput) (*domain.Message, error)
	Edit(ctx context.Context, senderID, messageID, content string) (*domain.Message, error)
	Delete(ctx context.Context, senderID, messageID string) error
	Rename(ctx context.Context, senderID, name string) (int, error)
}

// Boards authorizes watch_board requests.
type Boards interface {
	Authorize(ctx context.Context, ownerID, boardID string) (*domain.Board, error)
}

// SessionDependencies bundles what a session needs besides its socket.
type SessionDependencies struct {
	Messages     Messages
	Boards       Boards
	Broker       realtime.Broker
	Presence     *PresenceRegistry
	Logger       *zap.Logger
	OutboundSize int
}

type feedKind int

const (
	feedRoom feedKind = iota
	feedBroadcast
	feedNotifications
	feedBoard
)

type delivery struct {
	gen  uint64
	kind feedKind
	env  realtime.Envelope
}

type loaded struct {
	gen     uint64
	room    string
	records []realtime.MessageRecord
	err     error
}

type forwarder struct {
	sub  realtime.Subscription
	stop chan struct{}
	done chan struct{}
}

func (f *forwarder) close() {
	close(f.stop)
	_ = f.sub.Close()
	<-f.done
}

// Session is one /realtime WebSocket. Its state lives in the main loop; a
// reader, a writer and one forwarder per subscription feed it over channels.
type Session struct {
	conn     Conn
	profile  *domain.Profile
	messages Messages
	boards   Boards
	broker   realtime.Broker
	presence *PresenceRegistry
	logger   *zap.Logger

	out        chan ServerFrame
	deliveries chan delivery
	loads      chan loaded
	wg         sync.WaitGroup

	// owned by the main loop
	view     *RoomView
	nickname string
	avatar   string
	room     *forwarder
	feeds    []*forwarder
	watching map[string]*forwarder
}

// NewSession binds a socket to an authenticated profile.
func NewSession(conn Conn, profile *domain.Profile, deps SessionDependencies) *Session {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	size := deps.OutboundSize
	if size <= 0 {
		size = defaultOutboundSize
	}
	presence := deps.Presence
	if presence == nil {
		presence = NewPresenceRegistry()
	}
	return &Session{
		conn:       conn,
		profile:    profile,
		messages:   deps.Messages,
		boards:     deps.Boards,
		broker:     deps.Broker,
		presence:   presence,
		logger:     logger.With(zap.String("profile_id", profile.ID)),
		out:        make(chan ServerFrame, size),
		deliveries: make(chan delivery),
		loads:      make(chan loaded),
		view:       NewRoomView(),
		watching:   make(map[string]*forwarder),
	}
}

// Run serves the socket until the peer leaves or ctx ends. Every goroutine
// the session started has exited when Run returns.
func (s *Session) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	inbound := make(chan ClientFrame)

	if err := s.start(gctx); err != nil {
		s.shutdown(gctx)
		_ = s.conn.Close()
		return err
	}

	g.Go(func() error { return s.readLoop(gctx, inbound) })
	g.Go(func() error { return s.writeLoop(gctx) })
	g.Go(func() error { return s.mainLoop(gctx, inbound) })
	g.Go(func() error {
		<-gctx.Done()
		_ = s.conn.Close()
		return nil
	})

	err := g.Wait()
	if errors.Is(err, errPeerClosed) || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (s *Session) start(ctx context.Context) error {
	for _, feed := range []struct {
		topic string
		kind  feedKind
	}{
		{realtime.BroadcastMessages, feedBroadcast},
		{realtime.NotificationTopic(s.profile.ID), feedNotifications},
	} {
		fwd, err := s.subscribe(ctx, feed.topic, 0, feed.kind)
		if err != nil {
			return fmt.Errorf("subscribe %s: %w", feed.topic, err)
		}
		s.feeds = append(s.feeds, fwd)
	}

	me := s.me()
	roster := s.presence.Connect(me)
	s.view.SetPresence(me)
	for _, p := range roster {
		s.view.SetPresence(p)
	}
	s.send(ServerFrame{Type: FramePresence, Presence: s.view.Online()})
	s.broadcast(ctx, realtime.EventPresence, me)
	return nil
}

func (s *Session) readLoop(ctx context.Context, inbound chan<- ClientFrame) error {
	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			s.logger.Debug("realtime read ended", zap.Error(err))
			return errPeerClosed
		}
		var frame ClientFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			frame = ClientFrame{Type: "", Content: err.Error()}
		}
		select {
		case inbound <- frame:
		case <-ctx.Done():
			return nil
		}
	}
}

func (s *Session) writeLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case frame := <-s.out:
			if err := s.conn.WriteJSON(frame); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("write %s frame: %w", frame.Type, err)
			}
		}
	}
}

func (s *Session) mainLoop(ctx context.Context, inbound <-chan ClientFrame) error {
	defer s.shutdown(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case frame := <-inbound:
			s.handleFrame(ctx, frame)
		case d := <-s.deliveries:
			s.handleDelivery(ctx, d)
		case l := <-s.loads:
			s.handleLoaded(ctx, l)
		}
	}
}

// shutdown tears down subscriptions and announces the user offline. It runs
// after ctx is done, so announcements use a detached context.
func (s *Session) shutdown(ctx context.Context) {
	detached := context.WithoutCancel(ctx)
	if room := s.view.Room(); room != "" {
		s.broadcast(detached, realtime.EventSystem, SystemNotice{Room: room, Text: s.displayName() + " left the room"})
	}
	if s.room != nil {
		s.room.close()
		s.room = nil
	}
	for id, fwd := range s.watching {
		fwd.close()
		delete(s.watching, id)
	}
	for _, fwd := range s.feeds {
		fwd.close()
	}
	s.feeds = nil
	s.wg.Wait()

	if s.presence.Disconnect(s.profile.ID) {
		offline := s.me()
		offline.Online = false
		offline.Room = ""
		s.broadcast(detached, realtime.EventPresence, offline)
	}
}

func (s *Session) subscribe(ctx context.Context, topic string, gen uint64, kind feedKind) (*forwarder, error) {
	sub, err := s.broker.Subscribe(ctx, topic)
	if err != nil {
		return nil, err
	}
	fwd := &forwarder{sub: sub, stop: make(chan struct{}), done: make(chan struct{})}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer close(fwd.done)
		for {
			select {
			case env, ok := <-sub.C():
				if !ok {
					return
				}
				select {
				case s.deliveries <- delivery{gen: gen, kind: kind, env: env}:
				case <-fwd.stop:
					return
				case <-ctx.Done():
					return
				}
			case <-fwd.stop:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
	return fwd, nil
}

func (s *Session) handleFrame(ctx context.Context, frame ClientFrame) {
	var err error
	switch frame.Type {
	case FrameJoin:
		err = s.join(ctx, strings.TrimSpace(frame.Room))
	case FrameLeave:
		s.leave(ctx)
	case FrameSend:
		if frame.Nickname != "" {
			s.nickname = strings.TrimSpace(frame.Nickname)
		}
		if frame.Avatar != "" {
			s.avatar = frame.Avatar
		}
		err = s.sendMessage(ctx, frame.Content)
	case FrameEdit:
		_, err = s.messages.Edit(ctx, s.profile.ID, frame.ID, frame.Content)
	case FrameDelete:
		err = s.messages.Delete(ctx, s.profile.ID, frame.ID)
	case FrameSeen:
		s.ackSeen(ctx, frame.MessageIDs)
	case FrameNickname:
		s.rename(ctx, frame.Nickname)
	case FrameWatchBoard:
		err = s.watchBoard(ctx, frame.BoardID)
	case FramePing:
		s.send(ServerFrame{Type: FramePong})
	case "":
		err = apperrors.NewValidationError("malformed frame", map[string]any{"reason": frame.Content})
	default:
		err = apperrors.NewValidationError("unknown frame type", map[string]any{"type": frame.Type})
	}
	if err != nil {
		s.sendError(frame.Type, err)
	}
}

func (s *Session) join(ctx context.Context, room string) error {
	if err := s.messages.ValidateRoom(room); err != nil {
		return err
	}
	if room == s.view.Room() {
		return nil
	}
	s.leave(ctx)

	gen := s.view.Switch(room)
	// subscribe before the bulk read so nothing falls between the two
	fwd, err := s.subscribe(ctx, realtime.RoomTopic(room), gen, feedRoom)
	if err != nil {
		s.view.Switch("")
		return apperrors.NewInternalError(err)
	}
	s.room = fwd
	s.load(ctx, gen, room)

	me := s.me()
	s.presence.Update(me)
	s.view.SetPresence(me)
	s.broadcast(ctx, realtime.EventPresence, me)
	s.broadcast(ctx, realtime.EventSystem, SystemNotice{Room: room, Text: s.displayName() + " joined the room"})
	return nil
}

func (s *Session) leave(ctx context.Context) {
	room := s.view.Room()
	if room == "" {
		return
	}
	if s.room != nil {
		s.room.close()
		s.room = nil
	}
	s.view.Switch("")
	s.broadcast(ctx, realtime.EventSystem, SystemNotice{Room: room, Text: s.displayName() + " left the room"})
}

func (s *Session) load(ctx context.Context, gen uint64, room string) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		msgs, err := s.messages.ListRoom(ctx, room)
		records := make([]realtime.MessageRecord, 0, len(msgs))
		for _, m := range msgs {
			records = append(records, realtime.MessageRecordFrom(m))
		}
		select {
		case s.loads <- loaded{gen: gen, room: room, records: records, err: err}:
		case <-ctx.Done():
		}
	}()
}

func (s *Session) handleLoaded(ctx context.Context, l loaded) {
	if l.gen != s.view.Generation() {
		return
	}
	if l.err != nil {
		s.logger.Warn("room load failed", zap.String("room", l.room), zap.Error(l.err))
		// leave so that joining the same room again retries the read
		s.leave(ctx)
		s.sendError(FrameJoin, l.err)
		return
	}
	if !s.view.Load(l.gen, l.records) {
		return
	}
	msgs := s.view.Messages()
	s.send(ServerFrame{Type: FrameSnapshot, Room: l.room, Messages: msgs})
	ids := make([]string, 0, len(msgs))
	for _, m := range msgs {
		ids = append(ids, m.ID)
	}
	s.ackSeen(ctx, ids)
}

func (s *Session) handleDelivery(ctx context.Context, d delivery) {
	switch d.kind {
	case feedRoom:
		change, err := realtime.DecodeChange(d.env)
		if err != nil {
			s.logger.Warn("bad room change", zap.String("topic", d.env.Topic), zap.Error(err))
			return
		}
		if s.view.Apply(d.gen, change) != Applied {
			return
		}
		s.send(ServerFrame{Type: FrameChange, Room: s.view.Room(), Topic: d.env.Topic, Change: &change})
		if change.Type == realtime.ChangeInsert {
			var rec realtime.MessageRecord
			if json.Unmarshal(change.Record, &rec) == nil && rec.ID != "" {
				s.ackSeen(ctx, []string{rec.ID})
			}
		}
	case feedBoard:
		change, err := realtime.DecodeChange(d.env)
		if err != nil {
			s.logger.Warn("bad board change", zap.String("topic", d.env.Topic), zap.Error(err))
			return
		}
		s.send(ServerFrame{Type: FrameChange, Topic: d.env.Topic, Change: &change})
	case feedNotifications:
		change, err := realtime.DecodeChange(d.env)
		if err != nil || change.Type != realtime.ChangeInsert {
			return
		}
		s.send(ServerFrame{Type: FrameNotification, Notification: change.Record})
	case feedBroadcast:
		s.handleBroadcast(d.env)
	}
}

func (s *Session) handleBroadcast(env realtime.Envelope) {
	switch env.Event {
	case realtime.EventPresence:
		var p Presence
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return
		}
		s.view.SetPresence(p)
		s.send(ServerFrame{Type: FramePresence, Presence: s.view.Online()})
	case realtime.EventSeen:
		var ack SeenAck
		if err := json.Unmarshal(env.Payload, &ack); err != nil {
			return
		}
		if s.view.MarkSeen(ack.Room, ack.UserID, ack.MessageIDs) {
			s.send(ServerFrame{Type: FrameSeen, Room: ack.Room, Seen: &ack})
		}
	case realtime.EventSystem:
		var notice SystemNotice
		if err := json.Unmarshal(env.Payload, &notice); err != nil {
			return
		}
		if notice.Room == s.view.Room() {
			s.send(ServerFrame{Type: FrameSystem, Room: notice.Room, Text: notice.Text})
		}
	}
}

func (s *Session) sendMessage(ctx context.Context, content string) error {
	room := s.view.Room()
	if room == "" {
		return apperrors.NewValidationError("join a room first", nil)
	}
	_, err := s.messages.Send(ctx, service.SendMessageInput{
		Sender:   s.profile,
		Room:     room,
		Content:  content,
		Nickname: s.nickname,
		Avatar:   s.avatar,
	})
	return err
}

func (s *Session) ackSeen(ctx context.Context, ids []string) {
	room := s.view.Room()
	if room == "" || len(ids) == 0 {
		return
	}
	if !s.view.MarkSeen(room, s.profile.ID, ids) {
		return
	}
	s.broadcast(ctx, realtime.EventSeen, SeenAck{Room: room, UserID: s.profile.ID, MessageIDs: ids})
}

func (s *Session) rename(ctx context.Context, nickname string) {
	nickname = strings.TrimSpace(nickname)
	if nickname == "" || nickname == s.nickname {
		return
	}
	s.nickname = nickname
	me := s.me()
	s.presence.Update(me)
	s.view.SetPresence(me)
	s.broadcast(ctx, realtime.EventPresence, me)
	if room := s.view.Room(); room != "" {
		s.broadcast(ctx, realtime.EventSystem, SystemNotice{Room: room, Text: nickname + " changed nickname"})
	}
	if _, err := s.messages.Rename(ctx, s.profile.ID, nickname); err != nil {
		s.sendError(FrameNickname, err)
	}
}

func (s *Session) watchBoard(ctx context.Context, boardID string) error {
	if boardID == "" {
		return apperrors.NewValidationError("board_id is required", nil)
	}
	if _, ok := s.watching[boardID]; ok {
		return nil
	}
	if s.boards == nil {
		return apperrors.NewForbidden("boards are not available")
	}
	if _, err := s.boards.Authorize(ctx, s.profile.ID, boardID); err != nil {
		return err
	}
	fwd, err := s.subscribe(ctx, realtime.BoardTopic(boardID), 0, feedBoard)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	s.watching[boardID] = fwd
	return nil
}

func (s *Session) broadcast(ctx context.Context, event string, payload any) {
	if err := realtime.Publish(ctx, s.broker, realtime.BroadcastMessages, event, payload); err != nil {
		s.logger.Debug("broadcast failed", zap.String("event", event), zap.Error(err))
	}
}

// send queues a frame for the writer. A client that stops reading loses
// frames rather than stalling the session.
func (s *Session) send(frame ServerFrame) {
	select {
	case s.out <- frame:
	default:
		s.logger.Warn("outbound queue full, dropping frame", zap.String("type", frame.Type))
	}
}

func (s *Session) sendError(op string, err error) {
	domainErr := apperrors.ToDomainError(err)
	if domainErr.HTTPStatus >= 500 {
		s.logger.Error("realtime request failed", zap.String("op", op), zap.Error(err))
	}
	s.send(ServerFrame{Type: FrameError, Text: op, Error: domainErr.Message})
}

func (s *Session) me() Presence {
	return Presence{UserID: s.profile.ID, Name: s.displayName(), Room: s.view.Room(), Online: true}
}

func (s *Session) displayName() string {
	if s.nickname != "" {
		return s.nickname
	}
	return s.profile.DisplayName()
}
