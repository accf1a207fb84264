package http

import (
	"net/http"
	"strings"
)

// RouterConfig wires handlers and middleware into the API surface. Guard wraps
// the administrator routes only; the kiosk toggle and login stay public.
type RouterConfig struct {
	Kiosk         *KioskHandler
	Auth          *AuthHandler
	Workers       *WorkerHandler
	Registrations *RegistrationHandler
	Reports       *ReportHandler
	Guard         func(http.Handler) http.Handler
	Middleware    []func(http.Handler) http.Handler
}

func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()
	guard := cfg.Guard
	if guard == nil {
		guard = func(next http.Handler) http.Handler { return next }
	}

	if cfg.Kiosk != nil {
		mux.HandleFunc("/api/toggle", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Kiosk.Toggle(w, r)
		})
	}

	if cfg.Auth != nil {
		mux.HandleFunc("/api/login", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Auth.Login(w, r)
		})
		mux.Handle("/api/logout", guard(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Auth.Logout(w, r)
		})))
	}

	if cfg.Workers != nil {
		mux.Handle("/api/workers", guard(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Workers.List(w, r)
			case http.MethodPost:
				cfg.Workers.Create(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		})))
		mux.Handle("/api/workers/", guard(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rest := strings.TrimPrefix(r.URL.Path, "/api/workers/")
			if rest == "" {
				http.NotFound(w, r)
				return
			}

			if id, ok := strings.CutSuffix(rest, "/pin"); ok {
				if id == "" {
					http.NotFound(w, r)
					return
				}
				r = r.WithContext(ContextWithWorkerID(r.Context(), id))
				if r.Method != http.MethodPut {
					methodNotAllowed(w, http.MethodPut)
					return
				}
				cfg.Workers.RotatePIN(w, r)
				return
			}

			if strings.Contains(rest, "/") {
				http.NotFound(w, r)
				return
			}
			r = r.WithContext(ContextWithWorkerID(r.Context(), rest))
			switch r.Method {
			case http.MethodGet:
				cfg.Workers.Get(w, r)
			case http.MethodPut:
				cfg.Workers.Update(w, r)
			case http.MethodDelete:
				cfg.Workers.Deactivate(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPut, http.MethodDelete)
			}
		})))
	}

	if cfg.Registrations != nil {
		mux.Handle("/api/registrations", guard(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Registrations.List(w, r)
			case http.MethodPost:
				cfg.Registrations.Create(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		})))
		mux.Handle("/api/registrations/", guard(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimPrefix(r.URL.Path, "/api/registrations/")
			if id == "" || strings.Contains(id, "/") {
				http.NotFound(w, r)
				return
			}
			r = r.WithContext(ContextWithRegistrationID(r.Context(), id))
			switch r.Method {
			case http.MethodPatch:
				cfg.Registrations.Update(w, r)
			case http.MethodDelete:
				cfg.Registrations.Delete(w, r)
			default:
				methodNotAllowed(w, http.MethodPatch, http.MethodDelete)
			}
		})))
	}

	if cfg.Reports != nil {
		mux.Handle("/api/reports/summary", guard(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Reports.Summary(w, r)
		})))
	}

	var handler http.Handler = mux
	for i := len(cfg.Middleware) - 1; i >= 0; i-- {
		if cfg.Middleware[i] != nil {
			handler = cfg.Middleware[i](handler)
		}
	}

	return handler
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	if len(allowed) > 0 {
		w.Header().Set("Allow", strings.Join(allowed, ", "))
	}
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}
