package handler

import (
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"

	"wakemeup/internal/registry"
)

// InfoHandler reports which users currently have an agent connected.
// Debug surface for operators.
type InfoHandler struct {
	Conns *registry.Conns
}

func (h *InfoHandler) Connected(c *gin.Context) {
	ids := h.Conns.UserIDs()
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	c.JSON(http.StatusOK, gin.H{"connected": ids})
}
