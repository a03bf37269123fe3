package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"support-chat-be/internal/dto"
	"support-chat-be/internal/pkg/logger"
	"support-chat-be/internal/pkg/serverutils"
	"support-chat-be/internal/service"
	"support-chat-be/pkg/apperr"
)

// Dispatcher routes one inbound RPC to the support service and shapes the
// reply. Every request produces exactly one correlated Response; a stuck
// downstream call is cut off by the per-RPC timeout and surfaces INTERNAL.
type Dispatcher struct {
	service    service.ISupportService
	hub        *Hub
	rpcTimeout time.Duration
	logger     logger.ILogger
}

func NewDispatcher(svc service.ISupportService, hub *Hub, rpcTimeout time.Duration, log logger.ILogger) *Dispatcher {
	return &Dispatcher{
		service:    svc,
		hub:        hub,
		rpcTimeout: rpcTimeout,
		logger:     log,
	}
}

func (d *Dispatcher) Dispatch(c *Client, req Request) Response {
	// Derived from the connection's context so a disconnect cancels the
	// in-flight call alongside the timeout.
	ctx, cancel := context.WithTimeout(c.ctx, d.rpcTimeout)
	defer cancel()

	data, err := d.handle(ctx, c, req)
	if err != nil {
		return d.failure(c, req, err)
	}
	return Response{Id: req.Id, Ok: true, Data: data}
}

func (d *Dispatcher) handle(ctx context.Context, c *Client, req Request) (interface{}, error) {
	caller := c.Identity()

	switch req.Op {
	case OpCreate:
		var body dto.CreateRoomRequest
		if err := d.decode(req.Data, &body); err != nil {
			return nil, err
		}
		room, err := d.service.Create(ctx, caller, &body)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"room": room}, nil

	case OpPickup:
		var body dto.PickupRoomRequest
		if err := d.decode(req.Data, &body); err != nil {
			return nil, err
		}
		room, err := d.service.Pickup(ctx, caller, body.RoomId)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"room": room}, nil

	case OpSend:
		var body dto.SendMessageRequest
		if err := d.decode(req.Data, &body); err != nil {
			return nil, err
		}
		msg, err := d.service.Send(ctx, caller, body.RoomId, body.Body)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"message": msg}, nil

	case OpClose:
		var body dto.CloseRoomRequest
		if err := d.decode(req.Data, &body); err != nil {
			return nil, err
		}
		room, err := d.service.Close(ctx, caller, body.RoomId)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"room": room}, nil

	case OpList:
		var body dto.ListRoomsRequest
		if err := d.decode(req.Data, &body); err != nil {
			return nil, err
		}
		return d.service.List(ctx, caller, &body)

	case OpListMine:
		var body dto.ListMineRequest
		if err := d.decode(req.Data, &body); err != nil {
			return nil, err
		}
		return d.service.ListMine(ctx, caller, &body)

	case OpHistory:
		var body dto.HistoryRequest
		if err := d.decode(req.Data, &body); err != nil {
			return nil, err
		}
		return d.service.History(ctx, caller, &body)

	case OpSubscribe:
		var body dto.SubscribeRequest
		if err := d.decode(req.Data, &body); err != nil {
			return nil, err
		}
		if err := d.service.AuthorizeSubscribe(ctx, caller, body.RoomId); err != nil {
			return nil, err
		}
		d.hub.SubscribeRoom(c, body.RoomId)
		return map[string]interface{}{"subscribed": body.RoomId}, nil

	case OpSubscribeMine:
		d.hub.SubscribeMine(c)
		return map[string]interface{}{"subscribed": "mine"}, nil
	}

	return nil, apperr.Newf(apperr.KindInvalidArgument, "unknown operation %q", req.Op)
}

func (d *Dispatcher) decode(raw json.RawMessage, out interface{}) error {
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return apperr.Wrap(apperr.KindInvalidArgument, "malformed request payload", err)
		}
	}
	return serverutils.ValidateRequest(out)
}

func (d *Dispatcher) failure(c *Client, req Request, err error) Response {
	kind := apperr.KindOf(err)
	if errors.Is(err, context.DeadlineExceeded) {
		kind = apperr.KindInternal
	}

	if kind == apperr.KindInternal {
		d.logger.Error("Dispatcher", "RPC failed", map[string]interface{}{
			"op":      req.Op,
			"user_id": c.UserID(),
			"error":   err.Error(),
		})
	}

	return Response{
		Id: req.Id,
		Ok: false,
		Error: &ErrorBody{
			Code:    string(kind),
			Message: apperr.MessageOf(err),
		},
	}
}
