package handle

import "net/http"

// Health reports dependency status. Always HTTP 200; monitors read the
// status field in the body.
func (h *Handle) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeDetail(w, http.StatusMethodNotAllowed, "Método não permitido. Use GET.")
		return
	}
	writeJSON(w, http.StatusOK, h.reporter.Report(r.Context()))
}
