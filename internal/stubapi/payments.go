package stubapi

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/carmarket/carmarket/internal/api"
)

type service struct {
	Name  string
	Price float64
}

var services = map[string]service{
	"1": {Name: "VIP размещение", Price: 2000},
	"2": {Name: "Выделенное объявление", Price: 1000},
	"3": {Name: "Поднятие в поиске", Price: 500},
}

var paymentMethods = map[string]bool{"card": true, "kaspi": true, "qiwi": true}

func (s *Server) handleCreatePayment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ServiceID     string `json:"service_id"`
		PaymentMethod string `json:"payment_method"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Некорректный запрос")
		return
	}
	svc, ok := services[req.ServiceID]
	if !ok {
		writeError(w, http.StatusBadRequest, "Неизвестная услуга")
		return
	}
	if !paymentMethods[req.PaymentMethod] {
		writeError(w, http.StatusBadRequest, "Неподдерживаемый способ оплаты")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx := s.addTransaction("payment", svc.Price, "completed", svc.Name, req.PaymentMethod)
	s.record("Оплата услуги", svc.Name)
	writeJSON(w, http.StatusCreated, tx)
}

// addTransaction appends a ledger entry. Callers hold s.mu.
func (s *Server) addTransaction(kind string, amount float64, status, desc, method string) *api.Transaction {
	s.nextTxID++
	tx := &api.Transaction{
		ID:            s.nextTxID,
		Type:          kind,
		Amount:        amount,
		CurrencyCode:  "₸",
		Status:        status,
		Description:   desc,
		PaymentMethod: method,
		CreatedDate:   s.now().UTC(),
	}
	s.transactions = append(s.transactions, tx)
	return tx
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]api.Transaction, 0, len(s.transactions))
	for i := len(s.transactions) - 1; i >= 0; i-- {
		tx := s.transactions[i]
		if status != "" && status != "all" && tx.Status != status {
			continue
		}
		out = append(out, *tx)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleRefund(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	var req struct {
		Reason string `json:"reason"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Некорректный запрос")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var orig *api.Transaction
	for _, tx := range s.transactions {
		if tx.ID == id {
			orig = tx
			break
		}
	}
	if orig == nil {
		writeError(w, http.StatusNotFound, "Транзакция не найдена")
		return
	}
	if !orig.Refundable() {
		writeError(w, http.StatusConflict, "Возврат для этой транзакции невозможен")
		return
	}
	orig.Status = "refund_requested"

	desc := "Возврат за транзакцию #" + strconv.FormatInt(orig.ID, 10)
	if req.Reason != "" {
		desc += ": " + req.Reason
	}
	refund := s.addTransaction("refund", orig.Amount, "pending", desc, orig.PaymentMethod)
	s.record("Запрос на возврат", desc)
	writeJSON(w, http.StatusOK, refund)
}
