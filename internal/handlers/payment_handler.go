package handlers

import (
	"context"
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"intervuai/backend/internal/middleware"
	"intervuai/backend/internal/models"
	"intervuai/backend/internal/payment"
	"intervuai/backend/internal/utils"
)

type PaymentService interface {
	Plans() map[string]models.Plan
	CreateOrder(ctx context.Context, userID primitive.ObjectID, req models.CreateOrderRequest) (*payment.OrderResult, error)
	Verify(ctx context.Context, userID primitive.ObjectID, req models.VerifyPaymentRequest) (*payment.VerifyResult, error)
	History(ctx context.Context, userID primitive.ObjectID) ([]models.Payment, error)
}

type PaymentHandler struct {
	payments PaymentService
	logger   *zap.Logger
	debug    bool
}

func NewPaymentHandler(payments PaymentService, logger *zap.Logger, debug bool) *PaymentHandler {
	return &PaymentHandler{payments: payments, logger: logger, debug: debug}
}

func (h *PaymentHandler) PlansHandler(w http.ResponseWriter, r *http.Request) {
	utils.Success(w, http.StatusOK, "Plans retrieved successfully", h.payments.Plans())
}

func (h *PaymentHandler) CreateOrderHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.CreateOrderRequest](r)

	res, err := h.payments.CreateOrder(r.Context(), middleware.UserID(r), *req)
	if err != nil {
		utils.Error(w, err, h.debug)
		return
	}
	utils.Success(w, http.StatusCreated, "Order created successfully", res)
}

func (h *PaymentHandler) VerifyHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.VerifyPaymentRequest](r)

	res, err := h.payments.Verify(r.Context(), middleware.UserID(r), *req)
	if err != nil {
		h.logger.Warn("payment verification rejected",
			zap.String("order_id", req.RazorpayOrderID),
			zap.Error(err))
		utils.Error(w, err, h.debug)
		return
	}
	utils.Success(w, http.StatusOK, "Payment verified and subscription activated", res)
}

func (h *PaymentHandler) HistoryHandler(w http.ResponseWriter, r *http.Request) {
	list, err := h.payments.History(r.Context(), middleware.UserID(r))
	if err != nil {
		utils.Error(w, err, h.debug)
		return
	}
	if list == nil {
		list = []models.Payment{}
	}
	utils.Success(w, http.StatusOK, "Payment history retrieved", list)
}
