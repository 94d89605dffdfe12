package handlers

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/pulseguard/hypertension-api/config"
)

// Proxy forwards requests to the inference sidecars. The api owns auth and
// the sidecars stay off the public network.
type Proxy struct {
	RiskAPIURL      string
	MedSearchAPIURL string
}

// HeartRiskHandler forwards the risk questionnaire to the inference service
// and relays its answer verbatim
func (p Proxy) HeartRiskHandler(w http.ResponseWriter, r *http.Request) {
	p.forward(w, r, p.RiskAPIURL+"/predict")
}

// MedicineSearchHandler forwards a medicine name query to the search service
func (p Proxy) MedicineSearchHandler(w http.ResponseWriter, r *http.Request) {
	p.forward(w, r, p.MedSearchAPIURL+"/search")
}

func (p Proxy) forward(w http.ResponseWriter, r *http.Request, url string) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		config.ErrorStatus("failed to read request body", http.StatusBadRequest, w, err)
		return
	}
	if len(body) == 0 {
		config.ErrorStatus("request body is required", http.StatusBadRequest, w, errors.New("empty body"))
		return
	}

	client := &http.Client{Timeout: 20 * time.Second}
	req, err := http.NewRequestWithContext(r.Context(), http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		config.ErrorStatus("failed to build upstream request", http.StatusInternalServerError, w, err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		config.ErrorStatus("upstream service is unreachable", http.StatusBadGateway, w, err)
		return
	}
	defer resp.Body.Close()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.StatusCode)
	_, _ = io.Copy(w, resp.Body)
}
