package handler

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
	"github.com/sysu-ecnc-dev/squad-manager/backend/internal/config"
	"github.com/sysu-ecnc-dev/squad-manager/backend/internal/domain"
	"github.com/sysu-ecnc-dev/squad-manager/backend/internal/repository"
	"github.com/sysu-ecnc-dev/squad-manager/backend/internal/runner"
	"github.com/sysu-ecnc-dev/squad-manager/backend/internal/squadtype"
)

type Handler struct {
	validate   *validator.Validate
	config     *config.Config
	repository *repository.Repository
	translator ut.Translator
	runner     *runner.Manager
	squadTypes *squadtype.Registry

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, repo *repository.Repository, rm *runner.Manager, squadTypes *squadtype.Registry) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	zh := zh.New()
	uni := ut.New(zh, zh)
	trans, _ := uni.GetTranslator("zh")
	if err := zh_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	return &Handler{
		validate:   validate,
		config:     cfg,
		repository: repo,
		translator: trans,
		runner:     rm,
		squadTypes: squadTypes,

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	managers := []domain.Role{domain.RoleAdmin, domain.RoleOrganizer}
	admins := []domain.Role{domain.RoleAdmin}

	// 认证相关
	h.Mux.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
	})

	// 以下 API 必须要在登录后才允许调用
	h.Mux.Group(func(r chi.Router) {
		r.Use(h.auth)

		r.Route("/players", func(r chi.Router) {
			r.Get("/", h.GetAllPlayers)
			r.With(h.RequiredRole(managers)).Post("/", h.CreatePlayer)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.playerInfo)
				r.Get("/", h.GetPlayer)
				r.With(h.RequiredRole(managers)).Patch("/", h.UpdatePlayer)
				r.With(h.RequiredRole(admins)).Delete("/", h.DeletePlayer)
			})
		})

		r.Route("/squad-types", func(r chi.Router) {
			r.Get("/", h.GetAllSquadTypes)
			r.With(h.RequiredRole(admins)).Patch("/{handle}", h.UpdateSquadType)
		})

		r.Route("/roster-runs", func(r chi.Router) {
			r.Use(h.RequiredRole(managers))
			r.Post("/", h.StartRosterRun)
			r.Get("/{id}", h.GetRosterRun)
			r.Delete("/{id}", h.CancelRosterRun) // 取消任务
		})

		r.Get("/rosters/{id}", h.GetRoster)
	})
}
