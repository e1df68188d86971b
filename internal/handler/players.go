package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sysu-ecnc-dev/squad-manager/backend/internal/domain"
)

func (h *Handler) GetAllPlayers(w http.ResponseWriter, r *http.Request) {
	players, err := h.repository.GetAllPlayers()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取玩家列表成功", players)
}

func (h *Handler) CreatePlayer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AccountName string   `json:"accountName" validate:"required,max=64"`
		DiscordName string   `json:"discordName" validate:"max=64"`
		Email       string   `json:"email" validate:"omitempty,email"`
		Roles       []string `json:"roles" validate:"dive,required"`
		IsTrainer   bool     `json:"isTrainer"`
	}

	if err := h.readJSON(w, r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	player := &domain.Player{
		AccountName: req.AccountName,
		DiscordName: req.DiscordName,
		Email:       req.Email,
		Roles:       req.Roles,
		IsTrainer:   req.IsTrainer,
	}
	if player.Roles == nil {
		player.Roles = []string{}
	}

	if err := h.repository.CreatePlayer(player); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr) && pgErr.ConstraintName == "players_account_name_key":
			h.badRequest(w, r, errors.New("账号名已存在"))
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "创建玩家成功", player)
}

func (h *Handler) GetPlayer(w http.ResponseWriter, r *http.Request) {
	player := r.Context().Value(PlayerInfoCtx).(*domain.Player)
	h.successResponse(w, r, "获取玩家信息成功", player)
}

func (h *Handler) UpdatePlayer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DiscordName *string   `json:"discordName" validate:"omitempty,max=64"`
		Email       *string   `json:"email" validate:"omitempty,email"`
		Roles       *[]string `json:"roles" validate:"omitempty,dive,required"`
		IsTrainer   *bool     `json:"isTrainer"`
	}

	if err := h.readJSON(w, r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	player := r.Context().Value(PlayerInfoCtx).(*domain.Player)

	if req.DiscordName != nil {
		player.DiscordName = *req.DiscordName
	}
	if req.Email != nil {
		player.Email = *req.Email
	}
	if req.Roles != nil {
		player.Roles = *req.Roles
	}
	if req.IsTrainer != nil {
		player.IsTrainer = *req.IsTrainer
	}

	if err := h.repository.UpdatePlayer(player); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "更新玩家信息失败，请重试")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "更新玩家信息成功", player)
}

func (h *Handler) DeletePlayer(w http.ResponseWriter, r *http.Request) {
	player := r.Context().Value(PlayerInfoCtx).(*domain.Player)

	if err := h.repository.DeletePlayer(player.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "删除玩家成功", nil)
}
