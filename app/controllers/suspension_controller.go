package controllers

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/StoreFox/internal/pkg/suspension"
)

// SuspensionService is the policy surface the admin API needs.
type SuspensionService interface {
	RecordUnpaidOrder(ctx context.Context, customerID string, in suspension.UnpaidOrderInput) error
	EvaluateAndApplySuspension(ctx context.Context, customerID string) (*suspension.EvaluationResult, error)
	LiftSuspension(ctx context.Context, customerID string) (bool, error)
	AutoReactivateExpiredSuspensions(ctx context.Context) (int, error)
	Status(ctx context.Context, customerID string) (*suspension.StatusView, error)
}

// SuspensionController handles the admin suspension endpoints
type SuspensionController struct {
	svc     SuspensionService
	timeout time.Duration
}

func NewSuspensionController(svc SuspensionService) *SuspensionController {
	return &SuspensionController{svc: svc, timeout: 15 * time.Second}
}

type unpaidOrderRequest struct {
	OrderID        string `json:"order_id"`
	Amount         int64  `json:"amount"`
	Currency       string `json:"currency"`
	Disposition    string `json:"disposition"`
	OrderCreatedAt string `json:"order_created_at"`
}

func (sc *SuspensionController) requestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), sc.timeout)
}

// HandleGetSuspension returns the effective suspension state of a customer
func (sc *SuspensionController) HandleGetSuspension(c *fiber.Ctx) error {
	ctx, cancel := sc.requestContext()
	defer cancel()

	view, err := sc.svc.Status(ctx, customerIDParam(c))
	if err != nil {
		return sc.handleError(c, err)
	}

	response := fiber.Map{
		"customer_id":  view.CustomerID,
		"status":       view.Status,
		"unpaid_count": view.UnpaidCount,
		"threshold":    view.Threshold,
		"remaining":    view.Remaining,
	}
	if view.SuspendedUntil != nil {
		response["suspended_until"] = view.SuspendedUntil.UTC().Format(time.RFC3339)
		response["suspended_until_display"] = suspension.FormatSuspendedUntil(*view.SuspendedUntil, c.Get(fiber.HeaderAcceptLanguage))
	}
	return c.JSON(response)
}

// HandleRecordUnpaidOrder records an unpaid order and re-evaluates the policy
func (sc *SuspensionController) HandleRecordUnpaidOrder(c *fiber.Ctx) error {
	var req unpaidOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_payload", "message": "Body must be JSON"})
	}

	in := suspension.UnpaidOrderInput{
		OrderID:     req.OrderID,
		Amount:      req.Amount,
		Currency:    req.Currency,
		Disposition: req.Disposition,
	}
	if s := strings.TrimSpace(req.OrderCreatedAt); s != "" {
		createdAt, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_payload", "message": "order_created_at must be RFC 3339"})
		}
		in.OrderCreatedAt = createdAt
	}

	ctx, cancel := sc.requestContext()
	defer cancel()

	id := customerIDParam(c)
	if err := sc.svc.RecordUnpaidOrder(ctx, id, in); err != nil {
		return sc.handleError(c, err)
	}

	result, err := sc.svc.EvaluateAndApplySuspension(ctx, id)
	if err != nil {
		return sc.handleError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"recorded": true, "evaluation": result})
}

// HandleEvaluate applies the policy to the customer's current history
func (sc *SuspensionController) HandleEvaluate(c *fiber.Ctx) error {
	ctx, cancel := sc.requestContext()
	defer cancel()

	result, err := sc.svc.EvaluateAndApplySuspension(ctx, customerIDParam(c))
	if err != nil {
		return sc.handleError(c, err)
	}
	return c.JSON(result)
}

// HandleReactivate lifts a suspension manually
func (sc *SuspensionController) HandleReactivate(c *fiber.Ctx) error {
	ctx, cancel := sc.requestContext()
	defer cancel()

	lifted, err := sc.svc.LiftSuspension(ctx, customerIDParam(c))
	if err != nil {
		return sc.handleError(c, err)
	}
	return c.JSON(fiber.Map{"lifted": lifted})
}

// HandleSweep runs the expired-suspension sweep now
func (sc *SuspensionController) HandleSweep(c *fiber.Ctx) error {
	ctx, cancel := sc.requestContext()
	defer cancel()

	n, err := sc.svc.AutoReactivateExpiredSuspensions(ctx)
	if err != nil {
		log.Errorf("[Suspension] Manual sweep failed after %d reactivations: %v", n, err)
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error":       "sweep_incomplete",
			"reactivated": n,
		})
	}
	return c.JSON(fiber.Map{"reactivated": n})
}

func (sc *SuspensionController) handleError(c *fiber.Ctx, err error) error {
	var verrs validator.ValidationErrors
	switch {
	case errors.Is(err, suspension.ErrCustomerNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Customer not found"})
	case errors.Is(err, suspension.ErrAccountBlocked):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "account_blocked", "message": "Blocked accounts cannot be reactivated here"})
	case errors.As(err, &verrs):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_payload", "message": err.Error()})
	case errors.Is(err, suspension.ErrStoreUnavailable):
		log.Errorf("[Suspension] Store unavailable: %v", err)
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "store_unavailable", "message": "Please retry later"})
	default:
		log.Errorf("[Suspension] Request failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error"})
	}
}

// customerIDParam returns the :id path segment decoded. Clients usually send
// the e-mail with '@' escaped as %40 and fiber keeps params as received.
func customerIDParam(c *fiber.Ctx) string {
	raw := c.Params("id")
	if id, err := url.PathUnescape(raw); err == nil {
		return id
	}
	return raw
}
