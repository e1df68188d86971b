package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/sysu-ecnc-dev/squad-manager/backend/internal/runner"
	"github.com/sysu-ecnc-dev/squad-manager/backend/internal/utils"
)

func (h *Handler) StartRosterRun(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CommanderIDs []int64 `json:"commanderIDs" validate:"required,min=1,dive,gt=0"`
		TraineeIDs   []int64 `json:"traineeIDs" validate:"omitempty,dive,gt=0"`
		MaxSquads    int     `json:"maxSquads" validate:"required,min=1"`
	}

	if err := h.readJSON(w, r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := utils.ValidateDisjointPlayers(req.CommanderIDs, req.TraineeIDs); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := utils.ValidateMaxSquads(req.MaxSquads, len(req.CommanderIDs)); err != nil {
		h.badRequest(w, r, err)
		return
	}

	commanders, err := h.repository.GetPlayersByIDs(req.CommanderIDs)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "玩家不存在")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}
	trainees, err := h.repository.GetPlayersByIDs(req.TraineeIDs)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "玩家不存在")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	run := h.runner.Start(commanders, trainees, req.MaxSquads)

	h.successResponse(w, r, "分队任务已开始", run)
}

func (h *Handler) GetRosterRun(w http.ResponseWriter, r *http.Request) {
	run, err := h.runner.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		switch {
		case errors.Is(err, runner.ErrRunNotFound):
			h.errorResponse(w, r, "分队任务不存在")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "获取分队任务成功", run)
}

func (h *Handler) CancelRosterRun(w http.ResponseWriter, r *http.Request) {
	run, err := h.runner.Cancel(chi.URLParam(r, "id"))
	if err != nil {
		switch {
		case errors.Is(err, runner.ErrRunNotFound):
			h.errorResponse(w, r, "分队任务不存在或已经结束")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "已请求取消分队任务", run)
}

func (h *Handler) GetRoster(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.errorResponse(w, r, "分队结果ID无效")
		return
	}

	roster, err := h.repository.GetRosterByID(id)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "分队结果不存在")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "获取分队结果成功", roster)
}
