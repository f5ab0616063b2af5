package handle

import (
	"encoding/json"
	"errors"
	"net/http"

	"redacheck/api/internal/checker"
	"redacheck/api/internal/health"
	"redacheck/api/internal/languagetool"
	"redacheck/api/internal/model"
)

type Handle struct {
	svc      *checker.Service
	reporter *health.Reporter
	ltURL    string
}

func New(svc *checker.Service, reporter *health.Reporter, ltURL string) *Handle {
	return &Handle{
		svc:      svc,
		reporter: reporter,
		ltURL:    ltURL,
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeDetail sends the {"detail": ...} error body the frontend expects.
func writeDetail(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"detail": msg})
}

// writeError maps the checking failure taxonomy onto HTTP. Only grammar
// and input failures reach this point; enrichment failures are absorbed
// upstream and the request still answers 200.
func writeError(w http.ResponseWriter, err error) {
	var serr *languagetool.StatusError
	switch {
	case errors.Is(err, checker.ErrEmptyText):
		writeDetail(w, http.StatusBadRequest, "Texto não pode estar vazio.")
	case errors.Is(err, languagetool.ErrTimeout):
		writeDetail(w, http.StatusGatewayTimeout, "Timeout ao conectar ao LanguageTool. Tente novamente.")
	case errors.Is(err, languagetool.ErrUnavailable):
		writeDetail(w, http.StatusServiceUnavailable, "Não foi possível conectar ao LanguageTool. Serviço pode estar offline.")
	case errors.As(err, &serr):
		writeDetail(w, serr.Code, "Erro do servidor LanguageTool: "+serr.Body)
	default:
		writeDetail(w, http.StatusInternalServerError, "Erro interno: "+err.Error())
	}
}

// readText decodes the request body shared by both check modes. A body the
// size cap truncated comes back as 413 rather than a plain decode error.
func readText(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req model.CheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			writeDetail(w, http.StatusRequestEntityTooLarge, "Texto muito longo.")
			return "", false
		}
		writeDetail(w, http.StatusBadRequest, "JSON inválido: "+err.Error())
		return "", false
	}
	return req.Text, true
}
