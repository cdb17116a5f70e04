package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"pkg.classd.app/classd/internal/storage/model"
)

// registerGetClasses GET /guilds/:guild/classes
func (a *API) registerGetClasses() {
	type classModel struct {
		Name          string   `json:"name"`
		ShortName     string   `json:"short_name"`
		Role          string   `json:"role"`
		Category      string   `json:"category"`
		TextChannels  []string `json:"text_channels"`
		VoiceChannels []string `json:"voice_channels"`
	}

	a.router.GET("/guilds/:guild/classes", func(c *gin.Context) {
		var param struct {
			Guild string `uri:"guild"`
		}
		if err := c.ShouldBindUri(&param); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		classes, err := model.ListClasses(a.ctx, a.storage.Classes(), param.Guild)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		cm := make([]*classModel, len(classes))
		for i, cl := range classes {
			cm[i] = &classModel{cl.Name, cl.ShortName, cl.Role, cl.Category, cl.TextChannels, cl.VoiceChannels}
		}
		c.JSON(http.StatusOK, cm)
	})
}
