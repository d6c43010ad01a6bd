package api

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/example/kiosk-orders/internal/command"
	"github.com/example/kiosk-orders/internal/domain/order"
	"github.com/example/kiosk-orders/internal/domain/payment"
	"github.com/example/kiosk-orders/internal/query"
)

// maxWebhookBytes bounds a gateway webhook body; Stripe events stay far below it.
const maxWebhookBytes = 64 << 10

type Handlers struct {
	cmdHandler   *command.Handler
	queryHandler *query.Handler
}

func NewHandlers(cmdHandler *command.Handler, queryHandler *query.Handler) *Handlers {
	return &Handlers{
		cmdHandler:   cmdHandler,
		queryHandler: queryHandler,
	}
}

// Catalog Handlers

func (h *Handlers) GetProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.queryHandler.ListProducts(r.Context())
	if err != nil {
		log.Printf("[API] Error listing products: %v", err)
		respondError(w, http.StatusInternalServerError, "Fout bij ophalen van producten.")
		return
	}
	respondJSON(w, http.StatusOK, products)
}

// Order Handlers

func (h *Handlers) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var cmd command.PlaceOrder
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		respondError(w, http.StatusBadRequest, "Ongeldige JSON: "+err.Error())
		return
	}

	o, err := h.cmdHandler.PlaceOrder(r.Context(), cmd)
	if err != nil {
		if isValidationError(err) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Printf("[API] Error placing order: %v", err)
		respondError(w, http.StatusInternalServerError, "Fout bij opslaan bestelling.")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"message": "Bestelling geplaatst.",
		"order":   o,
	})
}

func (h *Handlers) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var cmd command.UpdateOrderStatus
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		respondError(w, http.StatusBadRequest, "Ongeldige JSON: "+err.Error())
		return
	}
	cmd.OrderID = r.PathValue("orderId")

	o, err := h.cmdHandler.UpdateOrderStatus(r.Context(), cmd)
	switch {
	case err == nil:
	case errors.Is(err, order.ErrMissingStatus):
		respondError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, order.ErrOrderNotFound):
		respondError(w, http.StatusNotFound, "Bestelling niet gevonden.")
		return
	default:
		log.Printf("[API] Error updating order %s: %v", cmd.OrderID, err)
		respondError(w, http.StatusInternalServerError, "Fout bij updaten status.")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "Status bijgewerkt",
		"status":  o.Status,
	})
}

func (h *Handlers) AdminOverview(w http.ResponseWriter, r *http.Request) {
	rows, err := h.queryHandler.AdminOverview(r.Context())
	if err != nil {
		log.Printf("[API] Error listing orders: %v", err)
		http.Error(w, "Fout bij ophalen bestellingen.", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := adminTemplate.Execute(w, rows); err != nil {
		log.Printf("[API] Error rendering admin overview: %v", err)
	}
}

// Payment Handlers

func (h *Handlers) CreateConnectionToken(w http.ResponseWriter, r *http.Request) {
	secret, err := h.cmdHandler.CreateConnectionToken(r.Context())
	if err != nil {
		log.Printf("[API] %v", err)
		respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "Kon connection token niet aanmaken"})
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"secret": secret})
}

func (h *Handlers) CreatePaymentIntent(w http.ResponseWriter, r *http.Request) {
	var cmd command.CreatePaymentIntent
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		respondPaymentError(w, http.StatusBadRequest, "Ongeldige JSON: "+err.Error())
		return
	}

	res, err := h.cmdHandler.CreatePaymentIntent(r.Context(), cmd)
	if err != nil {
		h.paymentFailure(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"clientSecret": res.ClientSecret,
		"orderId":      res.OrderID,
		"status":       res.Status,
	})
}

func (h *Handlers) CancelPayment(w http.ResponseWriter, r *http.Request) {
	var cmd command.CancelPayment
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		respondPaymentError(w, http.StatusBadRequest, "Ongeldige JSON: "+err.Error())
		return
	}

	changed, err := h.cmdHandler.CancelPayment(r.Context(), cmd)
	if err != nil {
		h.paymentFailure(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true, "message": changed.Message})
}

func (h *Handlers) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	var cmd command.ConfirmPayment
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		respondPaymentError(w, http.StatusBadRequest, "Ongeldige JSON: "+err.Error())
		return
	}

	changed, err := h.cmdHandler.ConfirmPayment(r.Context(), cmd)
	if err != nil {
		h.paymentFailure(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true, "message": changed.Message})
}

func (h *Handlers) PushPaymentStatus(w http.ResponseWriter, r *http.Request) {
	var cmd command.PushPaymentStatus
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		respondPaymentError(w, http.StatusBadRequest, "Ongeldige JSON: "+err.Error())
		return
	}

	if _, err := h.cmdHandler.PushPaymentStatus(r.Context(), cmd); err != nil {
		h.paymentFailure(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *Handlers) GetPaymentStatuses(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.queryHandler.PaymentStatuses())
}

// Webhook verifies the raw body against the gateway signature before any
// state change.
func (h *Handlers) Webhook(signatureHeader string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBytes))
		if err != nil {
			respondError(w, http.StatusBadRequest, "Webhook body onleesbaar.")
			return
		}

		event, err := h.cmdHandler.HandleWebhook(r.Context(), command.HandleWebhook{
			Payload:   payload,
			Signature: r.Header.Get(signatureHeader),
		})
		if err != nil {
			if errors.Is(err, payment.ErrInvalidSignature) {
				log.Printf("[API] Webhook rejected: %v", err)
				respondError(w, http.StatusBadRequest, "Webhook Error: "+err.Error())
				return
			}
			h.paymentFailure(w, err)
			return
		}

		respondJSON(w, http.StatusOK, map[string]any{"received": true, "type": event.Type})
	}
}

func (h *Handlers) paymentFailure(w http.ResponseWriter, err error) {
	switch {
	case isValidationError(err):
		respondPaymentError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, payment.ErrInvalidTransition):
		respondPaymentError(w, http.StatusConflict, err.Error())
	default:
		log.Printf("[API] Payment error: %v", err)
		respondPaymentError(w, http.StatusInternalServerError, "Fout bij verwerken betaling.")
	}
}

func isValidationError(err error) bool {
	for _, target := range []error{
		order.ErrEmptyOrder,
		order.ErrInvalidType,
		order.ErrMissingKiosk,
		order.ErrInvalidItem,
		order.ErrMissingStatus,
		payment.ErrMissingOrderID,
		payment.ErrInvalidAmount,
		payment.ErrMissingStatus,
		payment.ErrUnknownStatus,
		payment.ErrMalformedWebhook,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"message": message})
}

func respondPaymentError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]any{"success": false, "message": message})
}
