package notifier

import (
	"log/slog"

	"github.com/amishk599/jobseeker/internal/model"
	"github.com/amishk599/jobseeker/internal/render"
)

var _ model.Notifier = (*LogNotifier)(nil)

// LogNotifier writes newly reviewed jobs to the given logger.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier returns a notifier that logs each job via slog.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify logs each job with id, company, title, location, score and link.
// Logging never fails, so the result is always nil.
func (n *LogNotifier) Notify(jobs []model.Job) error {
	for _, j := range jobs {
		n.logger.Info("new reviewed job",
			"id", j.ID,
			"company", j.Company,
			"title", j.Title,
			"location", j.Location,
			"score", render.Score(j),
			"link", j.Link,
		)
	}
	return nil
}
