package controller

import (
	"net/http"

	"github.com/cassiomorais/pixgateway/internal/domain/fields"
	"github.com/cassiomorais/pixgateway/internal/service"
)

const (
	createChargeFailed = "Erro ao criar PIX"
	checkPaymentFailed = "Erro ao consultar pagamento"
)

type PixController struct {
	service *service.PixService
}

func NewPixController(svc *service.PixService) *PixController {
	return &PixController{service: svc}
}

// CreatePix handles POST /pix.
func (c *PixController) CreatePix(w http.ResponseWriter, r *http.Request) {
	body := readBody(w, r)

	charge, err := c.service.CreateCharge(r.Context(), body)
	if err != nil {
		writePaymentError(w, r, err, createChargeFailed)
		return
	}

	writeJSON(w, http.StatusOK, charge)
}

// CheckPayment handles GET and POST /check-payment. On POST, a body id or
// paymentId takes precedence over the query id.
func (c *PixController) CheckPayment(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if r.Method == http.MethodPost {
		if bodyID := fields.First(readBody(w, r), "id", "paymentId"); bodyID != "" {
			id = bodyID
		}
	}

	status, err := c.service.CheckPayment(r.Context(), service.CheckPaymentRequest{ID: id})
	if err != nil {
		writePaymentError(w, r, err, checkPaymentFailed)
		return
	}

	writeJSON(w, http.StatusOK, status)
}
