package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"sanctuary/internal/services"
)

// LockHandler serves PIN set-up and unlock.
type LockHandler struct {
	lock   *services.AppLock
	logger *zap.Logger
}

func NewLockHandler(lock *services.AppLock, logger *zap.Logger) *LockHandler {
	return &LockHandler{lock: lock, logger: logger}
}

// Status reports whether a PIN has been set.
func (h *LockHandler) Status(w http.ResponseWriter, r *http.Request) {
	has, err := h.lock.HasPIN(r.Context())
	if err != nil {
		h.logger.Error("read PIN state", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"hasPin": has})
}

func (h *LockHandler) SetPIN(w http.ResponseWriter, r *http.Request) {
	var req pinRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	err := h.lock.SetPIN(r.Context(), req.PIN, req.Confirm)
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, services.ErrInvalidPIN), errors.Is(err, services.ErrPINMismatch):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrPINExists):
		writeError(w, http.StatusConflict, err.Error())
	default:
		h.logger.Error("set PIN", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not save PIN")
	}
}

func (h *LockHandler) Unlock(w http.ResponseWriter, r *http.Request) {
	var req pinRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	token, err := h.lock.Unlock(r.Context(), req.PIN)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, tokenResponse{Token: token})
	case errors.Is(err, services.ErrWrongPIN):
		writeError(w, http.StatusUnauthorized, "incorrect PIN")
	case errors.Is(err, services.ErrNoPIN):
		writeError(w, http.StatusConflict, err.Error())
	default:
		h.logger.Error("unlock", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not unlock")
	}
}

// Reset removes the PIN. It sits behind RequireUnlock.
func (h *LockHandler) Reset(w http.ResponseWriter, r *http.Request) {
	if err := h.lock.ResetPIN(r.Context()); err != nil {
		h.logger.Error("reset PIN", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not reset PIN")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
