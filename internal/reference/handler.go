package reference

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) update(c *gin.Context, table string, run func() (int, error)) {
	rows, err := run()
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to update " + table + ": " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"table":       table,
		"rows_loaded": rows,
	})
}

// --------------------------------------------------
// POST /data/reference/exchangeRates/update
// --------------------------------------------------
func (h *Handler) UpdateExchangeRates(c *gin.Context) {
	h.update(c, "exchange_rates", func() (int, error) {
		return h.service.UpdateExchangeRates(c.Request.Context())
	})
}

// --------------------------------------------------
// POST /data/reference/pppRates/update
// --------------------------------------------------
func (h *Handler) UpdatePPPRates(c *gin.Context) {
	h.update(c, "ppp", func() (int, error) {
		return h.service.UpdatePPPRates(c.Request.Context())
	})
}

// --------------------------------------------------
// POST /data/reference/gdpDeflators/update
// --------------------------------------------------
func (h *Handler) UpdateDeflators(c *gin.Context) {
	h.update(c, "gdp_deflators", func() (int, error) {
		return h.service.UpdateDeflators(c.Request.Context())
	})
}

// --------------------------------------------------
// POST /data/reference/countries/update
// --------------------------------------------------
func (h *Handler) UpdateCountries(c *gin.Context) {
	h.update(c, "countries", func() (int, error) {
		return h.service.UpdateCountries(c.Request.Context())
	})
}
