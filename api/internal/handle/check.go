package handle

import (
	"net/http"
	"time"

	"redacheck/api/internal/metrics"
)

// --- BASIC CHECK ------------------------------------------------------------

func (h *Handle) Check(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeDetail(w, http.StatusMethodNotAllowed, "Método não permitido. Use POST.")
		return
	}
	text, ok := readText(w, r)
	if !ok {
		return
	}
	metrics.InputChars.Observe(float64(len([]rune(text))))

	start := time.Now()
	out, err := h.svc.Check(r.Context(), text)
	metrics.CheckDuration.WithLabelValues("basic").Observe(time.Since(start).Seconds())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
