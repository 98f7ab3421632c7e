package handlers

import (
	"net/http"

	"github.com/Conceptual-Machines/scribe-api/internal/models"
	"github.com/Conceptual-Machines/scribe-api/internal/prompt"
	"github.com/gin-gonic/gin"
)

type CatalogHandler struct {
	catalog *prompt.Catalog
}

func NewCatalogHandler(catalog *prompt.Catalog) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

type CatalogEntry struct {
	Key         string `json:"key"`
	DisplayName string `json:"displayName,omitempty"`
	WordTarget  int    `json:"wordTarget,omitempty"`
}

type CatalogResponse struct {
	Templates     []CatalogEntry `json:"templates"`
	Personalities []CatalogEntry `json:"personalities"`
	OutputFormats []CatalogEntry `json:"outputFormats"`
	Tones         []CatalogEntry `json:"tones"`
	Lengths       []CatalogEntry `json:"lengths"`
}

// GetCatalog lists every value a generation request may use
func (h *CatalogHandler) GetCatalog(c *gin.Context) {
	c.JSON(http.StatusOK, BuildCatalogResponse(h.catalog))
}

// BuildCatalogResponse describes the catalog in display order
func BuildCatalogResponse(catalog *prompt.Catalog) CatalogResponse {
	resp := CatalogResponse{}

	for _, t := range catalog.Templates() {
		entry := CatalogEntry{Key: string(t)}
		if frag, err := catalog.Template(t); err == nil {
			entry.DisplayName = frag.Title
		}
		resp.Templates = append(resp.Templates, entry)
	}
	for _, p := range catalog.Personalities() {
		entry := CatalogEntry{Key: string(p)}
		if frag, err := catalog.Personality(p); err == nil {
			entry.DisplayName = frag.DisplayName
		}
		resp.Personalities = append(resp.Personalities, entry)
	}
	for _, f := range catalog.Formats() {
		resp.OutputFormats = append(resp.OutputFormats, CatalogEntry{Key: string(f)})
	}
	for _, t := range models.Tones {
		resp.Tones = append(resp.Tones, CatalogEntry{Key: string(t)})
	}
	for _, l := range models.Lengths {
		resp.Lengths = append(resp.Lengths, CatalogEntry{Key: string(l), WordTarget: l.WordTarget()})
	}

	return resp
}
