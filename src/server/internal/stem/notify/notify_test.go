package stemnotify_test

import (
	"encoding/json"
	"github.com/cockroachdb/errors"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/veedubyou/spleeter-api/src/server/internal/stem/entity"
	"github.com/veedubyou/spleeter-api/src/server/internal/stem/notify"
	"github.com/veedubyou/spleeter-api/src/shared/lib/rabbitmq/rabbitmqfakes"
)

var _ = Describe("Notifier", func() {
	var (
		publisher *rabbitmqfakes.FakePublisher
		notifier  stemnotify.Notifier
	)

	BeforeEach(func() {
		publisher = &rabbitmqfakes.FakePublisher{}
		notifier = stemnotify.NewNotifier(publisher)
	})

	It("publishes separated stems by name", func() {
		notifier.StemsSeparated(stementity.NewSeparationResult("job-1", stementity.TwoStemsModel, stementity.WAVFormat,
			[]stementity.Stem{{Name: "accompaniment"}, {Name: "vocals"}}))

		Expect(publisher.PublishCallCount()).To(Equal(1))
		msg := publisher.PublishArgsForCall(0)
		Expect(msg.Type).To(Equal(stemnotify.StemsSeparatedType))

		event := stemnotify.StemsSeparatedEvent{}
		Expect(json.Unmarshal(msg.Body, &event)).To(Succeed())
		Expect(event).To(Equal(stemnotify.StemsSeparatedEvent{
			JobID:      "job-1",
			Model:      stementity.TwoStemsModel,
			Format:     stementity.WAVFormat,
			Stems:      []string{"accompaniment", "vocals"},
			TotalStems: 2,
		}))
	})

	It("publishes cleanups", func() {
		notifier.JobCleanedUp("job-2")

		msg := publisher.PublishArgsForCall(0)
		Expect(msg.Type).To(Equal(stemnotify.JobCleanedUpType))
		Expect(msg.Body).To(MatchJSON(`{"job_id":"job-2"}`))
	})

	It("swallows publish failures", func() {
		publisher.PublishReturns(errors.New("broker is down"))

		Expect(func() {
			notifier.JobCleanedUp("job-3")
		}).NotTo(Panic())
		Expect(publisher.PublishCallCount()).To(Equal(1))
	})
})
