package service

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"support-chat-be/internal/dto"
	"support-chat-be/internal/entity"
	"support-chat-be/internal/pkg/logger"
	"support-chat-be/internal/pkg/mailer"
	"support-chat-be/internal/repository/contract"
	"support-chat-be/internal/repository/memory"
	"support-chat-be/internal/repository/specification"
	"support-chat-be/pkg/apperr"
	"support-chat-be/pkg/identity"
	"support-chat-be/pkg/lifecycle"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// ISupportService is the gateway orchestration core: every chat RPC lands
// here after the transport layer has established the caller's identity.
// Authoritative room state lives in the repository; this layer only holds
// per-room mutexes so broadcasts go out in persisted order.
type ISupportService interface {
	Create(ctx context.Context, caller identity.Identity, req *dto.CreateRoomRequest) (*dto.RoomResponse, error)
	Pickup(ctx context.Context, caller identity.Identity, roomId uuid.UUID) (*dto.RoomResponse, error)
	Send(ctx context.Context, caller identity.Identity, roomId uuid.UUID, body string) (*dto.MessageResponse, error)
	Close(ctx context.Context, caller identity.Identity, roomId uuid.UUID) (*dto.RoomResponse, error)
	List(ctx context.Context, caller identity.Identity, req *dto.ListRoomsRequest) (*dto.PagedRoomsResponse, error)
	ListMine(ctx context.Context, caller identity.Identity, req *dto.ListMineRequest) (*dto.PagedRoomsResponse, error)
	History(ctx context.Context, caller identity.Identity, req *dto.HistoryRequest) (*dto.PagedMessagesResponse, error)
	AuthorizeSubscribe(ctx context.Context, caller identity.Identity, roomId uuid.UUID) error
}

type supportService struct {
	rooms       contract.ChatRoomRepository
	messages    contract.ChatMessageRepository
	users       contract.UserDirectory
	roomCache   *memory.RoomCache
	broadcaster EventBroadcaster
	audit       IPublisherService
	emailSvc    mailer.IEmailService
	logger      logger.ILogger

	// one mutex per room id; serializes mutate+broadcast so subscribers
	// observe events in persisted order
	roomLocks sync.Map
}

func NewSupportService(
	rooms contract.ChatRoomRepository,
	messages contract.ChatMessageRepository,
	users contract.UserDirectory,
	roomCache *memory.RoomCache,
	broadcaster EventBroadcaster,
	audit IPublisherService,
	emailSvc mailer.IEmailService,
	log logger.ILogger,
) ISupportService {
	return &supportService{
		rooms:       rooms,
		messages:    messages,
		users:       users,
		roomCache:   roomCache,
		broadcaster: broadcaster,
		audit:       audit,
		emailSvc:    emailSvc,
		logger:      log,
	}
}

func (s *supportService) lockRoom(roomId uuid.UUID) func() {
	v, _ := s.roomLocks.LoadOrStore(roomId, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func (s *supportService) Create(ctx context.Context, caller identity.Identity, req *dto.CreateRoomRequest) (*dto.RoomResponse, error) {
	if caller.IsStaff() {
		return nil, apperr.New(apperr.KindForbidden, "staff cannot open customer support rooms")
	}

	room := &entity.ChatRoom{
		Id:         uuid.New(),
		CustomerId: caller.UserID,
		Status:     entity.RoomStatusWaiting,
	}

	// Room and opening message land in one repository transaction; a
	// failure persists neither.
	var initial *entity.ChatMessage
	if body := strings.TrimSpace(req.InitialMessage); body != "" {
		initial = &entity.ChatMessage{
			Id:         uuid.New(),
			RoomId:     room.Id,
			SenderId:   caller.UserID,
			SenderRole: entity.SenderRoleCustomer,
			Body:       body,
		}
	}
	if err := s.rooms.Create(ctx, room, initial); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to create room", err)
	}

	res := dto.NewRoomResponse(room)
	s.broadcaster.RoomEvent(BroadcastTargets{
		MineUsers: []uuid.UUID{room.CustomerId},
		StaffMine: true,
	}, RoomEventCreated, res)

	s.publishAudit("ROOM_CREATED", map[string]interface{}{
		"room_id":     room.Id,
		"customer_id": room.CustomerId,
	})

	return &res, nil
}

func (s *supportService) Pickup(ctx context.Context, caller identity.Identity, roomId uuid.UUID) (*dto.RoomResponse, error) {
	unlock := s.lockRoom(roomId)
	defer unlock()

	room, err := s.loadRoom(ctx, roomId)
	if err != nil {
		return nil, err
	}
	if err := lifecycle.CanPickup(room, caller); err != nil {
		return nil, err
	}

	agentId := caller.UserID
	ok, err := s.rooms.UpdateStatusIf(ctx, roomId, entity.RoomStatusWaiting, entity.RoomStatusAssigned, contract.RoomPatch{AgentId: &agentId})
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to assign room", err)
	}
	if !ok {
		// Lost the race. Reload to report the precise reason.
		return nil, s.transitionLossError(ctx, roomId, func(r *entity.ChatRoom) error {
			return lifecycle.CanPickup(r, caller)
		})
	}
	s.roomCache.Invalidate(roomId)

	room, err = s.loadRoom(ctx, roomId)
	if err != nil {
		return nil, err
	}

	res := dto.NewRoomResponse(room)
	s.broadcaster.RoomEvent(BroadcastTargets{
		RoomID:    &roomId,
		MineUsers: []uuid.UUID{room.CustomerId, agentId},
		StaffMine: true,
	}, RoomEventAssigned, res)

	s.publishAudit("ROOM_ASSIGNED", map[string]interface{}{
		"room_id":  roomId,
		"agent_id": agentId,
	})

	return &res, nil
}

func (s *supportService) Send(ctx context.Context, caller identity.Identity, roomId uuid.UUID, body string) (*dto.MessageResponse, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, apperr.New(apperr.KindInvalidArgument, "message body must not be empty")
	}

	unlock := s.lockRoom(roomId)
	defer unlock()

	room, err := s.loadRoom(ctx, roomId)
	if err != nil {
		return nil, err
	}
	if err := lifecycle.CanSend(room, caller); err != nil {
		return nil, err
	}

	msg := &entity.ChatMessage{
		Id:         uuid.New(),
		RoomId:     roomId,
		SenderId:   caller.UserID,
		SenderRole: lifecycle.SenderRoleFor(room, caller.UserID),
		Body:       body,
	}
	if err := s.messages.Append(ctx, msg); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to append message", err)
	}
	s.roomCache.Invalidate(roomId)

	res := dto.NewMessageResponse(msg)
	s.broadcaster.MessageEvent(BroadcastTargets{
		RoomID:    &roomId,
		MineUsers: participantIds(room),
	}, res)

	s.publishAudit("MESSAGE_SENT", map[string]interface{}{
		"room_id":    roomId,
		"message_id": msg.Id,
		"sender_id":  msg.SenderId,
	})

	return &res, nil
}

func (s *supportService) Close(ctx context.Context, caller identity.Identity, roomId uuid.UUID) (*dto.RoomResponse, error) {
	unlock := s.lockRoom(roomId)
	defer unlock()

	room, err := s.loadRoom(ctx, roomId)
	if err != nil {
		return nil, err
	}
	if err := lifecycle.CanClose(room, caller); err != nil {
		return nil, err
	}

	fromWaiting := room.Status == entity.RoomStatusWaiting
	ok, err := s.rooms.UpdateStatusIf(ctx, roomId, room.Status, entity.RoomStatusClosed, contract.RoomPatch{})
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to close room", err)
	}
	if !ok {
		return nil, s.transitionLossError(ctx, roomId, func(r *entity.ChatRoom) error {
			return lifecycle.CanClose(r, caller)
		})
	}
	s.roomCache.Invalidate(roomId)

	room, err = s.loadRoom(ctx, roomId)
	if err != nil {
		return nil, err
	}

	res := dto.NewRoomResponse(room)
	s.broadcaster.RoomEvent(BroadcastTargets{
		RoomID:    &roomId,
		MineUsers: participantIds(room),
		StaffMine: fromWaiting,
	}, RoomEventClosed, res)

	s.publishAudit("ROOM_CLOSED", map[string]interface{}{
		"room_id":   roomId,
		"closed_by": caller.UserID,
	})

	if s.emailSvc != nil {
		go s.sendTranscript(room)
	}

	return &res, nil
}

func (s *supportService) List(ctx context.Context, caller identity.Identity, req *dto.ListRoomsRequest) (*dto.PagedRoomsResponse, error) {
	if !caller.IsStaff() {
		return nil, apperr.New(apperr.KindForbidden, "only staff can list rooms")
	}

	page, limit, err := normalizePaging(req.Page, req.Limit)
	if err != nil {
		return nil, err
	}

	filters := []specification.Specification{}
	if req.Status != "" {
		filters = append(filters, specification.ByStatus{Status: req.Status})
	}

	return s.pagedRooms(ctx, filters, page, limit)
}

func (s *supportService) ListMine(ctx context.Context, caller identity.Identity, req *dto.ListMineRequest) (*dto.PagedRoomsResponse, error) {
	page, limit, err := normalizePaging(req.Page, req.Limit)
	if err != nil {
		return nil, err
	}

	filters := []specification.Specification{specification.ByParticipant{UserID: caller.UserID}}
	return s.pagedRooms(ctx, filters, page, limit)
}

func (s *supportService) History(ctx context.Context, caller identity.Identity, req *dto.HistoryRequest) (*dto.PagedMessagesResponse, error) {
	page, limit, err := normalizePaging(req.Page, req.Limit)
	if err != nil {
		return nil, err
	}

	room, err := s.loadRoom(ctx, req.RoomId)
	if err != nil {
		return nil, err
	}
	if !caller.IsStaff() && !room.IsParticipant(caller.UserID) {
		return nil, apperr.New(apperr.KindForbidden, "not a participant of this room")
	}

	filter := specification.ByRoomID{RoomID: req.RoomId}
	total, err := s.messages.Count(ctx, filter)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to count messages", err)
	}

	items, err := s.messages.FindAll(ctx,
		filter,
		specification.OrderBySeq{},
		specification.Pagination{Limit: limit, Offset: (page - 1) * limit},
	)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to list messages", err)
	}

	res := &dto.PagedMessagesResponse{
		Items: make([]dto.MessageResponse, len(items)),
		Total: total,
		Page:  page,
		Limit: limit,
	}
	for i, msg := range items {
		res.Items[i] = dto.NewMessageResponse(msg)
	}
	return res, nil
}

// AuthorizeSubscribe checks whether the caller may receive live events for
// the room. Staff may watch any room; customers only their own. Served
// from the room cache when warm since subscribes arrive in bursts on
// reconnect.
func (s *supportService) AuthorizeSubscribe(ctx context.Context, caller identity.Identity, roomId uuid.UUID) error {
	room, found := s.roomCache.Get(roomId)
	if !found {
		var err error
		room, err = s.loadRoom(ctx, roomId)
		if err != nil {
			return err
		}
		s.roomCache.Set(room)
	}

	if caller.IsStaff() || room.CustomerId == caller.UserID {
		return nil
	}
	return apperr.New(apperr.KindForbidden, "not allowed to subscribe to this room")
}

func (s *supportService) pagedRooms(ctx context.Context, filters []specification.Specification, page, limit int) (*dto.PagedRoomsResponse, error) {
	total, err := s.rooms.Count(ctx, filters...)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to count rooms", err)
	}

	specs := append(append([]specification.Specification{}, filters...),
		specification.OrderByActivity{},
		specification.Pagination{Limit: limit, Offset: (page - 1) * limit},
	)
	items, err := s.rooms.FindAll(ctx, specs...)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to list rooms", err)
	}

	res := &dto.PagedRoomsResponse{
		Items: make([]dto.RoomResponse, len(items)),
		Total: total,
		Page:  page,
		Limit: limit,
	}
	for i, room := range items {
		res.Items[i] = dto.NewRoomResponse(room)
	}
	return res, nil
}

func (s *supportService) loadRoom(ctx context.Context, roomId uuid.UUID) (*entity.ChatRoom, error) {
	room, err := s.rooms.FindOne(ctx, specification.ByID{ID: roomId})
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to load room", err)
	}
	if room == nil {
		return nil, apperr.New(apperr.KindNotFound, "room not found")
	}
	return room, nil
}

// transitionLossError reloads the room after a conditional update matched
// zero rows and reruns the guard to report the precise reason. Falls back
// to Conflict when the guard still passes (pure write race).
func (s *supportService) transitionLossError(ctx context.Context, roomId uuid.UUID, guard func(*entity.ChatRoom) error) error {
	room, err := s.loadRoom(ctx, roomId)
	if err != nil {
		return err
	}
	if guardErr := guard(room); guardErr != nil {
		return guardErr
	}
	return apperr.New(apperr.KindConflict, "room was modified concurrently")
}

func (s *supportService) publishAudit(eventType string, payload map[string]interface{}) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Publish(eventType, payload); err != nil {
		s.logger.Warn("SupportService", "Failed to publish audit event", map[string]interface{}{
			"type":  eventType,
			"error": err.Error(),
		})
	}
}

func (s *supportService) sendTranscript(room *entity.ChatRoom) {
	ctx := context.Background()

	email, err := s.users.EmailOf(ctx, room.CustomerId)
	if err != nil {
		s.logger.Warn("SupportService", "Transcript skipped: customer email unavailable", map[string]interface{}{
			"room_id": room.Id,
			"error":   err.Error(),
		})
		return
	}

	messages, err := s.messages.FindAll(ctx,
		specification.ByRoomID{RoomID: room.Id},
		specification.OrderBySeq{},
	)
	if err != nil {
		s.logger.Warn("SupportService", "Transcript skipped: failed to load messages", map[string]interface{}{
			"room_id": room.Id,
			"error":   err.Error(),
		})
		return
	}

	if err := s.emailSvc.SendTranscript(email, room, messages); err != nil {
		s.logger.Warn("SupportService", "Failed to send transcript email", map[string]interface{}{
			"room_id": room.Id,
			"error":   err.Error(),
		})
	}
}

func participantIds(room *entity.ChatRoom) []uuid.UUID {
	ids := []uuid.UUID{room.CustomerId}
	if room.AgentId != nil {
		ids = append(ids, *room.AgentId)
	}
	return ids
}

func normalizePaging(page, limit int) (int, int, error) {
	if page < 0 || limit < 0 {
		return 0, 0, apperr.New(apperr.KindInvalidArgument, "page and limit must not be negative")
	}
	if limit > maxPageLimit {
		return 0, 0, apperr.Newf(apperr.KindInvalidArgument, "limit must not exceed %d", maxPageLimit)
	}
	if page == 0 {
		page = 1
	}
	if limit == 0 {
		limit = defaultPageLimit
	}
	return page, limit, nil
}
