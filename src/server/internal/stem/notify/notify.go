package stemnotify

import (
	"encoding/json"
	"github.com/apex/log"
	"github.com/rabbitmq/amqp091-go"
	stementity "github.com/veedubyou/spleeter-api/src/server/internal/stem/entity"
	"github.com/veedubyou/spleeter-api/src/shared/lib/cerr"
	"github.com/veedubyou/spleeter-api/src/shared/lib/rabbitmq"
)

const (
	StemsSeparatedType = "stems_separated"
	JobCleanedUpType   = "job_cleaned_up"
)

type StemsSeparatedEvent struct {
	JobID      string            `json:"job_id"`
	Model      stementity.Model  `json:"model"`
	Format     stementity.Format `json:"format"`
	Stems      []string          `json:"stems"`
	TotalStems int               `json:"total_stems"`
}

type JobCleanedUpEvent struct {
	JobID string `json:"job_id"`
}

// Notifier announces job lifecycle changes to downstream consumers.
// Delivery is best effort, failures are logged and never reach the client.
type Notifier struct {
	publisher rabbitmq.Publisher
}

func NewNotifier(publisher rabbitmq.Publisher) Notifier {
	return Notifier{
		publisher: publisher,
	}
}

func (n Notifier) StemsSeparated(result stementity.SeparationResult) {
	stemNames := make([]string, len(result.Stems))
	for i, stem := range result.Stems {
		stemNames[i] = stem.Name
	}

	n.publish(StemsSeparatedType, result.JobID, StemsSeparatedEvent{
		JobID:      result.JobID,
		Model:      result.Model,
		Format:     result.Format,
		Stems:      stemNames,
		TotalStems: result.TotalStems,
	})
}

func (n Notifier) JobCleanedUp(jobID string) {
	n.publish(JobCleanedUpType, jobID, JobCleanedUpEvent{
		JobID: jobID,
	})
}

func (n Notifier) publish(messageType string, jobID string, event any) {
	errctx := cerr.Field("message_type", messageType).Field("job_id", jobID)

	jsonBytes, err := json.Marshal(event)
	if err != nil {
		cerr.Log(errctx.Wrap(err).Error("Failed to marshal event"))
		return
	}

	err = n.publisher.Publish(amqp091.Publishing{
		Type: messageType,
		Body: jsonBytes,
	})
	if err != nil {
		cerr.Log(errctx.Wrap(err).Error("Failed to publish event"))
		return
	}

	log.WithFields(log.Fields{
		"message_type": messageType,
		"job_id":       jobID,
	}).Debug("Published event")
}
