package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"support-chat-be/internal/dto"
	"support-chat-be/internal/pkg/serverutils"
	"support-chat-be/internal/service"
	"support-chat-be/internal/websocket"
	"support-chat-be/pkg/apperr"
)

// SupportController exposes the read-side of the chat over plain HTTP.
// Clients use these endpoints to reconcile after a reconnect (live events
// are best-effort; there is no replay log).
type ISupportController interface {
	RegisterRoutes(r fiber.Router)
	ListRooms(ctx *fiber.Ctx) error
	ListMine(ctx *fiber.Ctx) error
	History(ctx *fiber.Ctx) error
}

type supportController struct {
	supportService service.ISupportService
	wsHandler      *websocket.Handler
	jwtMiddleware  fiber.Handler
}

func NewSupportController(supportService service.ISupportService, wsHandler *websocket.Handler, jwtMiddleware fiber.Handler) ISupportController {
	return &supportController{
		supportService: supportService,
		wsHandler:      wsHandler,
		jwtMiddleware:  jwtMiddleware,
	}
}

func (c *supportController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/support/v1")

	// WS handshake carries its own credential; no middleware here.
	h.Get("/ws", c.wsHandler.ServeWs)

	h.Use(c.jwtMiddleware)
	h.Get("/rooms", c.ListRooms)
	h.Get("/rooms/mine", c.ListMine)
	h.Get("/rooms/:id/messages", c.History)
}

func (c *supportController) ListRooms(ctx *fiber.Ctx) error {
	caller, ok := serverutils.IdentityFromCtx(ctx)
	if !ok {
		return apperr.New(apperr.KindUnauthorized, "missing identity")
	}

	req := dto.ListRoomsRequest{
		Status: ctx.Query("status"),
		Page:   ctx.QueryInt("page", 0),
		Limit:  ctx.QueryInt("limit", 0),
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.supportService.List(ctx.Context(), caller, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success list rooms", res))
}

func (c *supportController) ListMine(ctx *fiber.Ctx) error {
	caller, ok := serverutils.IdentityFromCtx(ctx)
	if !ok {
		return apperr.New(apperr.KindUnauthorized, "missing identity")
	}

	req := dto.ListMineRequest{
		Page:  ctx.QueryInt("page", 0),
		Limit: ctx.QueryInt("limit", 0),
	}

	res, err := c.supportService.ListMine(ctx.Context(), caller, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success list own rooms", res))
}

func (c *supportController) History(ctx *fiber.Ctx) error {
	caller, ok := serverutils.IdentityFromCtx(ctx)
	if !ok {
		return apperr.New(apperr.KindUnauthorized, "missing identity")
	}

	roomId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return apperr.New(apperr.KindInvalidArgument, "invalid room id")
	}

	req := dto.HistoryRequest{
		RoomId: roomId,
		Page:   ctx.QueryInt("page", 0),
		Limit:  ctx.QueryInt("limit", 0),
	}

	res, err := c.supportService.History(ctx.Context(), caller, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success fetch history", res))
}
