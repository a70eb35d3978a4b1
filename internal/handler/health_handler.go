package handler

import "net/http"

type healthBody struct {
	Status      string `json:"status"`
	ModelLoaded bool   `json:"modelLoaded"`
}

// Health answers liveness probes. The API serves (with fallbacks) without a
// model, so a missing model is reported but is not unhealthy.
//
// @Summary Healthcheck
// @Tags health
// @Produce json
// @Success 200 {object} healthBody
// @Router /health [get]
func Health(modelLoaded bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, healthBody{Status: "ok", ModelLoaded: modelLoaded})
	}
}
