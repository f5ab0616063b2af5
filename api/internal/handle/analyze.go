package handle

import (
	"net/http"
	"time"

	"redacheck/api/internal/metrics"
)

// --- FULL ANALYSIS ----------------------------------------------------------

func (h *Handle) Analyze(w http.ResponseWriter, r *http.Request) {
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
	out, err := h.svc.Analyze(r.Context(), text)
	metrics.CheckDuration.WithLabelValues("full").Observe(time.Since(start).Seconds())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
