package controllers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/ManuelReschke/StoreFox/app/models"
	"github.com/ManuelReschke/StoreFox/app/repository"
	"github.com/ManuelReschke/StoreFox/internal/pkg/suspension"
)

const maxCustomerPageSize = 100

// CustomerController handles admin customer management
type CustomerController struct {
	customers repository.CustomerRepository
}

func NewCustomerController(customers repository.CustomerRepository) *CustomerController {
	return &CustomerController{customers: customers}
}

// customerItem adds the derived status, which can differ from the stored state
// until the next reactivation sweep.
type customerItem struct {
	models.Customer
	EffectiveStatus string `json:"effective_status"`
}

type createCustomerRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// HandleCreateCustomer registers a customer account
func (cc *CustomerController) HandleCreateCustomer(c *fiber.Ctx) error {
	var req createCustomerRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_payload", "message": "Body must be JSON"})
	}

	customer, err := models.NewCustomer(req.Email, req.Name)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_payload", "message": err.Error()})
	}

	if err := cc.customers.Create(customer); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "already_exists", "message": "Customer already exists"})
		}
		log.Errorf("[Customer] Create %s failed: %v", customer.Email, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error"})
	}
	return c.Status(fiber.StatusCreated).JSON(customer)
}

// HandleListCustomers returns a page of customers
func (cc *CustomerController) HandleListCustomers(c *fiber.Ctx) error {
	offset := c.QueryInt("offset", 0)
	limit := c.QueryInt("limit", 20)
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 || limit > maxCustomerPageSize {
		limit = maxCustomerPageSize
	}

	customers, err := cc.customers.List(offset, limit)
	if err != nil {
		log.Errorf("[Customer] List failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error"})
	}
	total, err := cc.customers.Count()
	if err != nil {
		log.Errorf("[Customer] Count failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error"})
	}

	now := time.Now().UTC()
	items := make([]customerItem, 0, len(customers))
	for i := range customers {
		items = append(items, customerItem{Customer: customers[i], EffectiveStatus: suspension.EffectiveStatus(&customers[i], now)})
	}
	return c.JSON(fiber.Map{"customers": items, "total": total, "offset": offset, "limit": limit})
}
