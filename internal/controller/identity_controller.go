package controller

import (
	"net/http"

	"github.com/cassiomorais/pixgateway/internal/service"
)

const lookupFailed = "Erro ao consultar CPF"

type IdentityController struct {
	service *service.IdentityService
}

func NewIdentityController(svc *service.IdentityService) *IdentityController {
	return &IdentityController{service: svc}
}

// Consulta handles GET /consulta?cpf=...
func (c *IdentityController) Consulta(w http.ResponseWriter, r *http.Request) {
	record, err := c.service.Lookup(r.Context(), service.LookupCPFRequest{CPF: r.URL.Query().Get("cpf")})
	if err != nil {
		writeLookupError(w, r, err, lookupFailed)
		return
	}

	writeJSON(w, http.StatusOK, IdentityResponse{DADOS: *record})
}
