package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/emrgen/programtree/internal/bus"
	"github.com/emrgen/programtree/internal/command"
	"github.com/emrgen/programtree/internal/rpc"
	"github.com/emrgen/programtree/internal/service"
	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"github.com/sirupsen/logrus"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type errorBody struct {
	Code       string   `json:"code"`
	Message    string   `json:"message"`
	Violations []string `json:"violations,omitempty"`
}

// restHandler exposes the reads as resources and every command under /v1/rpc/{method}.
type restHandler struct {
	server ProgramTreeServiceServer
	mux    *runtime.ServeMux
}

// NewRestHandler returns a gateway mux serving the http routes of the service.
func NewRestHandler(server ProgramTreeServiceServer) (*runtime.ServeMux, error) {
	mux := runtime.NewServeMux(
		// the results are plain structs, not proto messages
		runtime.WithMarshalerOption(runtime.MIMEWildcard, &runtime.JSONBuiltin{}),
		runtime.WithErrorHandler(writeError),
	)
	h := &restHandler{server: server, mux: mux}

	err := errors.Join(
		mux.HandlePath(http.MethodGet, "/v1/trees/{code}/{year}", h.getProgramTree),
		mux.HandlePath(http.MethodDelete, "/v1/trees/{code}/{year}", h.deleteProgramTree),
		mux.HandlePath(http.MethodGet, "/v1/trees/{code}/{year}/content", h.getContent),
		mux.HandlePath(http.MethodGet, "/v1/nodes/{code}/{year}/links", h.getLinksUsingNode),
		mux.HandlePath(http.MethodPost, "/v1/rpc/{method}", h.call),
		mux.HandlePath(http.MethodGet, "/healthz", func(w http.ResponseWriter, r *http.Request, _ map[string]string) {
			h.respond(w, r, map[string]string{"status": "SERVING"})
		}),
	)
	if err != nil {
		return nil, err
	}
	return mux, nil
}

func (h *restHandler) getProgramTree(w http.ResponseWriter, r *http.Request, params map[string]string) {
	t, err := treeFromParams(params)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.invoke(w, r, command.GetProgramTree{Tree: t})
}

func (h *restHandler) deleteProgramTree(w http.ResponseWriter, r *http.Request, params map[string]string) {
	t, err := treeFromParams(params)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.invoke(w, r, command.DeleteProgramTree{Tree: t})
}

// getContent writes the cached rendering as is.
func (h *restHandler) getContent(w http.ResponseWriter, r *http.Request, params map[string]string) {
	t, err := treeFromParams(params)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	result, err := h.server.Invoke(h.context(w, r), command.GetContent{Tree: t})
	if err != nil {
		h.fail(w, r, err)
		return
	}

	content := result.(*service.ContentResult)
	cacheStatus := "MISS"
	if content.Cached {
		cacheStatus = "HIT"
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Cache", cacheStatus)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(content.Content); err != nil {
		logrus.Errorf("failed to write content: %v", err)
	}
}

func (h *restHandler) getLinksUsingNode(w http.ResponseWriter, r *http.Request, params map[string]string) {
	t, err := treeFromParams(params)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.invoke(w, r, command.GetLinksUsingNode{Code: t.Code, Year: t.Year})
}

func (h *restHandler) call(w http.ResponseWriter, r *http.Request, params map[string]string) {
	m, ok := rpc.Lookup(params["method"])
	if !ok {
		h.fail(w, r, status.Errorf(codes.NotFound, "unknown method %s", params["method"]))
		return
	}

	inbound, _ := runtime.MarshalerForRequest(h.mux, r)
	cmd := m.New()
	if err := inbound.NewDecoder(r.Body).Decode(cmd); err != nil {
		h.fail(w, r, status.Error(codes.InvalidArgument, err.Error()))
		return
	}
	h.invoke(w, r, cmd)
}

func (h *restHandler) invoke(w http.ResponseWriter, r *http.Request, cmd command.Command) {
	result, err := h.server.Invoke(h.context(w, r), cmd)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, r, result)
}

func (h *restHandler) respond(w http.ResponseWriter, r *http.Request, result any) {
	_, outbound := runtime.MarshalerForRequest(h.mux, r)
	body, err := outbound.Marshal(result)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", outbound.ContentType(result))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		logrus.Errorf("failed to write response: %v", err)
	}
}

func (h *restHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	_, outbound := runtime.MarshalerForRequest(h.mux, r)
	runtime.HTTPError(r.Context(), h.mux, outbound, w, r, err)
}

func (h *restHandler) context(w http.ResponseWriter, r *http.Request) context.Context {
	id := r.Header.Get(CorrelationHeader)
	if id == "" {
		return r.Context()
	}
	w.Header().Set(CorrelationHeader, id)
	return bus.WithCorrelationID(r.Context(), id)
}

func treeFromParams(params map[string]string) (command.Tree, error) {
	year, err := strconv.Atoi(params["year"])
	if err != nil {
		return command.Tree{}, status.Error(codes.InvalidArgument, "year must be a number")
	}
	return command.Tree{Code: params["code"], Year: year}, nil
}

// writeError is the error handler of the gateway mux. Routing errors reach it too.
func writeError(_ context.Context, _ *runtime.ServeMux, m runtime.Marshaler, w http.ResponseWriter, _ *http.Request, err error) {
	st := status.Convert(toStatus(err))
	body := errorBody{Code: st.Code().String(), Message: st.Message()}
	for _, detail := range st.Details() {
		if failure, ok := detail.(*errdetails.PreconditionFailure); ok {
			for _, v := range failure.GetViolations() {
				if v.GetSubject() != "" {
					body.Violations = append(body.Violations, v.GetSubject()+": "+v.GetDescription())
				} else {
					body.Violations = append(body.Violations, v.GetDescription())
				}
			}
		}
	}

	buf, merr := m.Marshal(body)
	if merr != nil {
		logrus.Errorf("failed to marshal error: %v", merr)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", m.ContentType(body))
	w.WriteHeader(runtime.HTTPStatusFromCode(st.Code()))
	if _, err := w.Write(buf); err != nil {
		logrus.Errorf("failed to write error: %v", err)
	}
}
