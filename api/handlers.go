package api

import (
	"net/http"

	"reelspin/models"
)

type balanceResponse struct {
	AccountID string `json:"accountId"`
	Balance   int64  `json:"balance"`
}

type setBalanceRequest struct {
	Balance int64 `json:"balance"`
}

type decisionRequest struct {
	SpinIndex int   `json:"spinIndex"`
	BetAmount int64 `json:"betAmount"`
}

type spinRequest struct {
	BetAmount      int64 `json:"betAmount"`
	SequenceNumber int64 `json:"sequenceNumber,omitempty"`
}

type autoSpinRequest struct {
	BetAmount int64 `json:"betAmount"`
	Count     int   `json:"count"`
}

type turboRequest struct {
	Enabled bool `json:"enabled"`
}

type logRequest struct {
	Status models.SpinStatus `json:"status"`
	Amount int64             `json:"amount"`
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) getBalance(w http.ResponseWriter, r *http.Request) {
	accountID := accountFrom(r.Context())
	balance, err := h.deps.Ledger.GetBalance(r.Context(), accountID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, balanceResponse{AccountID: accountID, Balance: balance})
}

func (h *handler) setBalance(w http.ResponseWriter, r *http.Request) {
	payload, err := decode[setBalanceRequest](r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	accountID := accountFrom(r.Context())
	balance, err := h.deps.Ledger.SetBalance(r.Context(), accountID, payload.Balance)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, balanceResponse{AccountID: accountID, Balance: balance})
}

func (h *handler) getSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Policy.Snapshot())
}

func (h *handler) setSettings(w http.ResponseWriter, r *http.Request) {
	payload, err := decode[models.WinPolicyConfig](r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Policy.Update(r.Context(), payload))
}

func (h *handler) requestDecision(w http.ResponseWriter, r *http.Request) {
	payload, err := decode[decisionRequest](r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if payload.SpinIndex <= 0 || payload.BetAmount <= 0 {
		writeError(w, http.StatusBadRequest, "spinIndex and betAmount must be positive")
		return
	}

	decision, err := h.deps.Decisions.RequestDecision(r.Context(), payload.SpinIndex, payload.BetAmount)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "decision unavailable")
		return
	}
	writeJSON(w, http.StatusOK, decision)
}

func (h *handler) spin(w http.ResponseWriter, r *http.Request) {
	payload, err := decode[spinRequest](r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.deps.Controller.Spin(r.Context(), models.SpinRequest{
		AccountID:      accountFrom(r.Context()),
		BetAmount:      payload.BetAmount,
		SequenceNumber: payload.SequenceNumber,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *handler) startAutoSpin(w http.ResponseWriter, r *http.Request) {
	payload, err := decode[autoSpinRequest](r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	accountID := accountFrom(r.Context())
	if err := h.deps.Controller.StartAutoSpin(r.Context(), accountID, payload.BetAmount, payload.Count); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, h.deps.Controller.Session(accountID))
}

func (h *handler) stopAutoSpin(w http.ResponseWriter, r *http.Request) {
	accountID := accountFrom(r.Context())
	h.deps.Controller.StopAutoSpin(accountID)
	writeJSON(w, http.StatusOK, h.deps.Controller.Session(accountID))
}

func (h *handler) setTurbo(w http.ResponseWriter, r *http.Request) {
	payload, err := decode[turboRequest](r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	accountID := accountFrom(r.Context())
	h.deps.Controller.SetTurbo(accountID, payload.Enabled)
	writeJSON(w, http.StatusOK, h.deps.Controller.Session(accountID))
}

func (h *handler) session(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Controller.Session(accountFrom(r.Context())))
}

func (h *handler) logSpin(w http.ResponseWriter, r *http.Request) {
	payload, err := decode[logRequest](r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !payload.Status.Valid() {
		writeError(w, http.StatusBadRequest, "status must be WIN or LOSE")
		return
	}

	if err := h.deps.SpinLog.LogSpinResult(r.Context(), accountFrom(r.Context()), payload.Status, payload.Amount); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "logged"})
}

func (h *handler) stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.deps.SpinLog.Stats(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
