package triage

import (
	"context"
	"fmt"
	"strings"

	"github.com/linnemanlabs/go-core/log"
)

// Classifier assigns a category to working-language complaint text via the
// external completion capability. It is total: any failure, timeout, or
// unrecognizable response yields DefaultCategory.
type Classifier struct {
	llm     Completer
	logger  log.Logger
	metrics *Metrics
}

// NewClassifier creates a classification adapter.
func NewClassifier(llm Completer, logger log.Logger, metrics *Metrics) *Classifier {
	if logger == nil {
		logger = log.Nop()
	}
	return &Classifier{llm: llm, logger: logger, metrics: metrics}
}

// labelPrecedence is the fixed parse order when a response mentions more than
// one category label.
var labelPrecedence = []Category{CategorySanitation, CategoryInfrastructure, CategorySafety}

// Classify returns the category for text. Never returns an invalid category.
func (c *Classifier) Classify(ctx context.Context, text string) Category {
	prompt := fmt.Sprintf(
		"Classify this complaint into exactly one category: Sanitation, Infrastructure, or Safety. "+
			"Respond with only the category name.\n\nComplaint: %s", text)

	resp, err := c.llm.Complete(ctx, prompt)
	if err != nil {
		c.logger.Warn(ctx, "classification call failed, using default category",
			"error", err, "default", string(DefaultCategory))
		c.metrics.incFallback("classify")
		return DefaultCategory
	}

	for _, cat := range labelPrecedence {
		if strings.Contains(resp, string(cat)) {
			return cat
		}
	}

	c.logger.Warn(ctx, "classification response had no recognizable label",
		"response", resp, "default", string(DefaultCategory))
	c.metrics.incFallback("classify")
	return DefaultCategory
}
