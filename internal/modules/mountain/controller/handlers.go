package controller

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/tlanclos/isthemountainout/internal/announce"
	"github.com/tlanclos/isthemountainout/internal/modules/mountain/decision"
	"github.com/tlanclos/isthemountainout/internal/modules/mountain/types"
	"github.com/tlanclos/isthemountainout/internal/utils"
)

func (c *mountainControllerImpl) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit, err := parseHistoryQuery(r)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	format, err := parseFormat(r)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	records, err := c.service.History(limit)
	if err != nil {
		slog.Error("history: read failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to read history")
		return
	}
	if format == "csv" {
		rows := make([][]string, 0, len(records))
		for _, rec := range records {
			rows = append(rows, rec.Row())
		}
		utils.WriteCSV(w, http.StatusOK, rows)
		return
	}
	utils.WriteJSON(w, http.StatusOK, records)
}

func (c *mountainControllerImpl) handleStatus(w http.ResponseWriter, r *http.Request) {
	st, err := c.service.Status()
	if err != nil {
		slog.Error("status: read failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to read status")
		return
	}
	utils.WriteJSON(w, http.StatusOK, st)
}

func (c *mountainControllerImpl) handleObservation(w http.ResponseWriter, r *http.Request) {
	obs, err := decodeObservation(r)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	d, err := c.service.Observe(r.Context(), obs, nil)
	switch {
	case err == nil:
		utils.WriteJSON(w, http.StatusOK, d)
	case errors.Is(err, decision.ErrStore):
		// a stored row can fail to decode too; that is never the client's fault
		slog.Error("observe: history store failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to record observation")
	case errors.Is(err, types.ErrUnknownLabel), errors.Is(err, decision.ErrInvalidObservation):
		utils.WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, announce.ErrAnnounce):
		utils.WriteJSON(w, http.StatusBadGateway, map[string]any{
			"error":    http.StatusText(http.StatusBadGateway),
			"message":  err.Error(),
			"decision": d,
		})
	default:
		slog.Error("observe failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, err.Error())
	}
}
