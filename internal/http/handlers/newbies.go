package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nexus-club/site-api/internal/config"
	"github.com/nexus-club/site-api/internal/domain/newbie"
	"github.com/nexus-club/site-api/internal/observability"
)

// User-facing messages stay in French like the rest of the site.
const (
	msgCreated        = "Votre inscription a été enregistrée avec succès !"
	msgMissingField   = "Tous les champs obligatoires doivent être remplis"
	msgInvalidEmail   = "Format d'email invalide"
	msgInvalidClasse  = "Classe non valide"
	msgDuplicate      = "Cette inscription existe déjà"
	msgSchemaMismatch = "Erreur de configuration de base de données"
	msgUnavailable    = "Erreur de connexion à la base de données"
	msgInternal       = "Erreur interne du serveur. Veuillez réessayer."
)

type NewbiesStore interface {
	Insert(ctx context.Context, req newbie.SignupRequest) (newbie.Newbie, error)
	Now(ctx context.Context) (time.Time, error)
}

type NewbiesHandler struct {
	repo         NewbiesStore
	prom         *observability.Prom
	dbConfigured bool
}

func NewNewbiesHandler(repo NewbiesStore, prom *observability.Prom, dbConfigured bool) *NewbiesHandler {
	return &NewbiesHandler{repo: repo, prom: prom, dbConfigured: dbConfigured}
}

func (h *NewbiesHandler) outcome(o string) {
	if h.prom != nil {
		h.prom.SignupsTotal.WithLabelValues(o).Inc()
	}
}

// Create handles the signup form: bind, validate, normalize, insert, map.
// Validation rejects before any store I/O is attempted.
func (h *NewbiesHandler) Create(ctx *gin.Context) {
	var req newbie.SignupRequest

	if !BindJSON(ctx, &req) {
		h.outcome("rejected")
		return
	}

	if err := req.Validate(); err != nil {
		h.outcome("rejected")

		switch {
		case errors.Is(err, newbie.ErrInvalidEmail):
			RespondBadRequest(ctx, "invalid_email", msgInvalidEmail, nil)
		case errors.Is(err, newbie.ErrInvalidCohort):
			RespondBadRequest(ctx, "invalid_classe", msgInvalidClasse, nil)
		default:
			RespondBadRequest(ctx, "missing_field", msgMissingField, nil)
		}
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)

	defer cancel()

	n, err := h.repo.Insert(cctx, req.Normalize())

	if err != nil {
		switch {
		case errors.Is(err, newbie.ErrDuplicateEmail):
			h.outcome("duplicate")
			RespondConflict(ctx, "already_registered", msgDuplicate)
		case errors.Is(err, newbie.ErrSchemaMismatch):
			h.outcome("error")
			slog.Default().ErrorContext(ctx.Request.Context(), "newbies table out of sync with deploy", "err", err)
			RespondInternal(ctx, msgSchemaMismatch)
		case errors.Is(err, newbie.ErrUnavailable):
			h.outcome("error")
			RespondUnavailable(ctx, msgUnavailable)
		default:
			h.outcome("error")
			slog.Default().ErrorContext(ctx.Request.Context(), "signup insert failed", "err", err)
			RespondInternal(ctx, msgInternal)
		}
		return
	}

	h.outcome("created")

	ctx.JSON(http.StatusCreated, gin.H{
		"message": msgCreated,
		"data":    n,
	})
}

// Probe is the read-only store connectivity check: current DB time plus
// whether a connection string was configured. Not part of the signup contract.
func (h *NewbiesHandler) Probe(ctx *gin.Context) {
	configured := "Not set"
	if h.dbConfigured {
		configured = "Set"
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)

	defer cancel()

	t, err := h.repo.Now(cctx)

	if err != nil {
		slog.Default().ErrorContext(ctx.Request.Context(), "db probe failed", "err", err)

		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":        "Database connection failed",
			"database_url": configured,
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message":      "Database connection successful!",
		"time":         t,
		"database_url": configured,
	})
}
