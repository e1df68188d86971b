package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) GetAllSquadTypes(w http.ResponseWriter, r *http.Request) {
	h.successResponse(w, r, "获取小队类型成功", h.squadTypes.SquadTypes())
}

// UpdateSquadType 只能开关小队类型，其余字段以配置文件为准
func (h *Handler) UpdateSquadType(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Enabled *bool `json:"enabled" validate:"required"`
	}

	if err := h.readJSON(w, r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	squadType, ok := h.squadTypes.SetEnabled(chi.URLParam(r, "handle"), *req.Enabled)
	if !ok {
		h.errorResponse(w, r, "小队类型不存在")
		return
	}

	h.successResponse(w, r, "更新小队类型成功", squadType)
}
