package handle

import "net/http"

// Root is the liveness page.
func (h *Handle) Root(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeDetail(w, http.StatusNotFound, "Rota não encontrada.")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":           "API de verificação de texto online. Use o endpoint POST /v2/check",
		"languagetool_url": h.ltURL,
		"health":           "ok",
	})
}
