package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/temcen/smartdiet/internal/fuzzy"
	"github.com/temcen/smartdiet/pkg/models"
)

// RuleSource exposes the loaded rule base.
type RuleSource interface {
	Rules() []fuzzy.Rule
}

type RulesHandler struct {
	source RuleSource
}

func NewRulesHandler(source RuleSource) *RulesHandler {
	return &RulesHandler{source: source}
}

type ruleView struct {
	Rule       string                    `json:"rule"`
	Antecedent map[fuzzy.Variable]string `json:"antecedent"`
	Diet       models.DietType           `json:"diet"`
	Weight     float64                   `json:"weight"`
}

// List handles GET /api/v1/rules.
func (h *RulesHandler) List(c *gin.Context) {
	rules := h.source.Rules()
	views := make([]ruleView, len(rules))
	for i, r := range rules {
		views[i] = ruleView{
			Rule:       r.String(),
			Antecedent: r.Antecedent,
			Diet:       r.Diet,
			Weight:     r.Weight,
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"count": len(views),
		"rules": views,
	})
}
