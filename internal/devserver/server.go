package devserver

import (
	"context"
	"database/sql"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// Options del backend de desarrollo.
type Options struct {
	// Store explícito (tests). Si es nil se resuelve por env:
	// DB_DSN seteado => Postgres; si no, in-memory seedeado.
	Store Store

	// DB explícita; tiene prioridad sobre DB_DSN.
	DB *sql.DB
}

// NewRouter arma el backend de desarrollo: el contrato REST completo del
// backend real montado bajo /api, con las cuentas demo ya creadas.
func NewRouter(opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	st := opts.Store
	if st == nil {
		db := opts.DB
		if db == nil {
			if dsn := os.Getenv("DB_DSN"); dsn != "" {
				if opened, err := Open(dsn); err == nil {
					db = opened
				}
			}
		}

		if db != nil {
			st = NewPostgresStore(db)
		} else {
			st = NewMemStore()
		}
	}

	_ = Seed(context.Background(), st, uuid.NewString)

	r.Route("/api", func(api chi.Router) {
		registerRoutes(api, st)
	})

	return r
}
