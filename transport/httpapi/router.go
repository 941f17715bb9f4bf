package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/MrEthical07/authtools"
)

// maxBodyBytes bounds every request body.
const maxBodyBytes = 64 << 10

// Handler serves the auth flows of one engine.
type Handler struct {
	engine *authtools.Engine
}

// NewHandler returns a Handler serving engine.
func NewHandler(engine *authtools.Engine) *Handler {
	return &Handler{engine: engine}
}

// Register mounts a POST route on r for every flow that is not removed.
func (h *Handler) Register(r chi.Router) {
	routes := map[authtools.Flow]http.HandlerFunc{
		authtools.FlowRegister: serve(h.engine.Register),
		authtools.FlowLogin:    serve(h.engine.Login),
		authtools.FlowLogout:   serve(h.engine.Logout),
		authtools.FlowRefresh:  serve(h.engine.Refresh),
		authtools.FlowCheck:    serve(h.engine.Check),
	}

	for _, flow := range authtools.Flows {
		if h.engine.RouteState(flow) == authtools.RouteRemoved {
			continue
		}
		r.Post("/"+flow.String(), routes[flow])
	}
}

// NewRouter returns a chi router with the flow routes mounted at its root.
// Hosts may add their own routes to it.
func NewRouter(engine *authtools.Engine) *chi.Mux {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(chimw.CleanPath)

	NewHandler(engine).Register(r)

	return r
}

func serve[Req, Data any](run func(context.Context, Req) authtools.Response[Data]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req Req
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
			// An unreadable body is answered as missing input by the flow.
			var zero Req
			req = zero
		}

		resp := run(requestContext(r), req)
		writeJSON(w, StatusFor(resp.Auth.Code), resp)
	}
}

func requestContext(r *http.Request) context.Context {
	ctx := r.Context()
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		ctx = authtools.WithClientIP(ctx, host)
	} else if r.RemoteAddr != "" {
		ctx = authtools.WithClientIP(ctx, r.RemoteAddr)
	}
	if ua := r.UserAgent(); ua != "" {
		ctx = authtools.WithUserAgent(ctx, ua)
	}
	return ctx
}

// SendData writes a success envelope with code 0 around data. Host routes
// use it to answer in the same shape as the flows.
func SendData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, authtools.Success(authtools.CodeOK, &data))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("httpapi: encode response", "error", err)
	}
}
