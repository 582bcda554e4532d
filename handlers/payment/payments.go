package payment

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/alexsergeyev/skillforge/model"
	"github.com/alexsergeyev/skillforge/services"
	"github.com/alexsergeyev/skillforge/utils/middleware"
	"github.com/alexsergeyev/skillforge/utils/response"
	"github.com/alexsergeyev/skillforge/utils/validation"
)

// PaymentHandler handles payment requests
type PaymentHandler struct {
	db             *gorm.DB
	paymentService *services.PaymentService
	validator      *validation.Validator
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(db *gorm.DB, paymentService *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		db:             db,
		paymentService: paymentService,
		validator:      validation.NewValidator(),
	}
}

// CreateCheckoutRequest starts a checkout for a course or a lesson
type CreateCheckoutRequest struct {
	PaidCourseID *uint   `json:"paid_course_id" validate:"omitempty,min=1"`
	PaidLessonID *uint   `json:"paid_lesson_id" validate:"omitempty,min=1"`
	Amount       float64 `json:"amount" validate:"required,gt=0"`
}

// ListPayments handles GET /api/v1/payments with filtering and ordering
func (h *PaymentHandler) ListPayments(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "User not authenticated")
	}

	query := h.db.Model(&model.Payment{})

	// Staff audit all payments, users see their own history.
	if !user.IsStaff && !user.IsSuperuser {
		query = query.Where("user_id = ?", user.ID)
	}

	if courseID := c.Query("paid_course"); courseID != "" {
		query = query.Where("paid_course_id = ?", courseID)
	}
	if lessonID := c.Query("paid_lesson"); lessonID != "" {
		query = query.Where("paid_lesson_id = ?", lessonID)
	}
	if method := c.Query("method"); method != "" {
		query = query.Where("method = ?", method)
	}
	if gte := c.Query("amount_gte"); gte != "" {
		if v, err := strconv.ParseFloat(gte, 64); err == nil {
			query = query.Where("amount >= ?", v)
		}
	}
	if lte := c.Query("amount_lte"); lte != "" {
		if v, err := strconv.ParseFloat(lte, 64); err == nil {
			query = query.Where("amount <= ?", v)
		}
	}

	// Ordering accepts payment_date or amount, each with an optional
	// leading minus for descending. Newest first by default.
	switch c.Query("ordering", "-payment_date") {
	case "payment_date":
		query = query.Order("payment_date ASC")
	case "amount":
		query = query.Order("amount ASC")
	case "-amount":
		query = query.Order("amount DESC")
	default:
		query = query.Order("payment_date DESC")
	}

	var payments []model.Payment
	if err := query.Find(&payments).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch payments")
	}

	return response.Success(c, payments)
}

// GetPayment handles GET /api/v1/payments/:id
func (h *PaymentHandler) GetPayment(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "User not authenticated")
	}

	payment, err := h.loadOwnPayment(c, user)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Payment not found")
		}
		return response.InternalServerError(c, "Failed to fetch payment")
	}

	return response.Success(c, payment)
}

// CreateCheckout handles POST /api/v1/payments/checkout
func (h *PaymentHandler) CreateCheckout(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "User not authenticated")
	}

	var req CreateCheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationFailed(c, validation.FormatValidationErrors(err))
	}

	payment, err := h.paymentService.CreateCheckout(c.Context(), user, services.CreateCheckoutInput{
		CourseID: req.PaidCourseID,
		LessonID: req.PaidLessonID,
		Amount:   req.Amount,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidPaymentTarget):
			return response.BadRequest(c, "Specify exactly one of paid_course_id or paid_lesson_id")
		case errors.Is(err, gorm.ErrRecordNotFound):
			return response.NotFound(c, "Course or lesson not found")
		case errors.Is(err, services.ErrProviderFailure):
			return response.BadGateway(c, "Payment provider is unavailable")
		default:
			return response.InternalServerError(c, "Failed to create checkout")
		}
	}

	return response.Created(c, payment)
}

// CheckStatus handles GET /api/v1/payments/:id/status
func (h *PaymentHandler) CheckStatus(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "User not authenticated")
	}

	payment, err := h.loadOwnPayment(c, user)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Payment not found")
		}
		return response.InternalServerError(c, "Failed to fetch payment")
	}

	refreshed, svcErr := h.paymentService.CheckStatus(c.Context(), payment.ID)
	if svcErr != nil {
		if errors.Is(svcErr, services.ErrProviderFailure) {
			return response.BadGateway(c, "Payment provider is unavailable")
		}
		return response.InternalServerError(c, "Failed to check payment status")
	}

	return response.Success(c, refreshed)
}

// Success handles GET /api/v1/payments/success, the checkout return URL
func (h *PaymentHandler) Success(c *fiber.Ctx) error {
	return response.SuccessWithMessage(c, "Payment completed. Thank you!", nil)
}

// Cancel handles GET /api/v1/payments/cancel, the checkout cancel URL
func (h *PaymentHandler) Cancel(c *fiber.Ctx) error {
	return response.SuccessWithMessage(c, "Payment cancelled. You can retry the checkout at any time.", nil)
}

// loadOwnPayment fetches the payment in :id, enforcing that regular
// users only reach their own records.
func (h *PaymentHandler) loadOwnPayment(c *fiber.Ctx, user *model.User) (*model.Payment, error) {
	query := h.db.Model(&model.Payment{})
	if !user.IsStaff && !user.IsSuperuser {
		query = query.Where("user_id = ?", user.ID)
	}

	var payment model.Payment
	if err := query.First(&payment, c.Params("id")).Error; err != nil {
		return nil, err
	}

	return &payment, nil
}
