package handlers

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ndewijer/Portfolio-Backtest-Backend/internal/api/response"
	"github.com/ndewijer/Portfolio-Backtest-Backend/internal/model"
	"github.com/ndewijer/Portfolio-Backtest-Backend/internal/service"
	"github.com/ndewijer/Portfolio-Backtest-Backend/internal/validation"
)

// LimitMessage is returned when the max segment of a limited search is not a number.
const LimitMessage = "Limit must be a number"

// SearchHandler handles ticker search requests.
type SearchHandler struct {
	searchService *service.SearchService
}

// NewSearchHandler creates a new SearchHandler.
func NewSearchHandler(searchService *service.SearchService) *SearchHandler {
	return &SearchHandler{
		searchService: searchService,
	}
}

// SearchResponse wraps search results with a message that is empty on success.
type SearchResponse struct {
	Results []model.TickerInfo `json:"results"`
	Message string             `json:"message"`
}

// Keyword handles GET requests searching the static ticker list.
//
// Endpoint: GET /api/keyword/{search}
// Response: 200 OK with an array of {symbol, name}
func (h *SearchHandler) Keyword(w http.ResponseWriter, r *http.Request) {
	response.RespondJSON(w, http.StatusOK, h.searchService.Keyword(chi.URLParam(r, "search")))
}

// KeywordLimit handles GET requests searching the static ticker list with a result cap.
//
// Endpoint: GET /api/keyword/{search}/limit/{max}
// Response: 200 OK with SearchResponse
// Error: 400 Bad Request with SearchResponse if max is not a non-negative integer
func (h *SearchHandler) KeywordLimit(w http.ResponseWriter, r *http.Request) {
	limit, err := validation.ValidateLimit(chi.URLParam(r, "max"))
	if err != nil {
		response.RespondJSON(w, http.StatusBadRequest, SearchResponse{Results: []model.TickerInfo{}, Message: LimitMessage})
		return
	}

	results, err := h.searchService.KeywordLimit(chi.URLParam(r, "search"), limit)
	if err != nil {
		response.RespondJSON(w, http.StatusBadRequest, SearchResponse{Results: []model.TickerInfo{}, Message: LimitMessage})
		return
	}

	response.RespondJSON(w, http.StatusOK, SearchResponse{Results: results})
}

// YahooStocks handles GET requests forwarded to Yahoo's symbol search.
//
// Endpoint: GET /api/yahoos_finance_stocks/{query}
// Response: 200 OK with SearchResponse
// Error: 502 Bad Gateway with SearchResponse carrying the upstream error
func (h *SearchHandler) YahooStocks(w http.ResponseWriter, r *http.Request) {
	results, err := h.searchService.Remote(r.Context(), chi.URLParam(r, "query"))
	if err != nil {
		log.Printf("remote symbol search failed: %v", err)
		response.RespondJSON(w, http.StatusBadGateway, SearchResponse{
			Results: []model.TickerInfo{},
			Message: "ERROR : " + err.Error(),
		})
		return
	}

	response.RespondJSON(w, http.StatusOK, SearchResponse{Results: results})
}
