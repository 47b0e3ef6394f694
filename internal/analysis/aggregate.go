package analysis

import (
	"sort"

	"github.com/ninesib/backend/internal/models"
)

// AggregateTopics folds the per-topic breakdowns of every historical attempt
// into one longitudinal view: for each topic, total/correct/wrong summed
// across all attempts, with accuracy and error share recomputed against the
// all-time wrong count. Sorted descending by focus, ties keeping first-seen
// order.
func AggregateTopics(attempts []models.AttemptRecord) []models.TopicStat {
	counter := make(map[string]*topicBucket)
	var order []string

	for _, a := range attempts {
		for _, t := range a.Result.ByTopic {
			b, ok := counter[t.Topic]
			if !ok {
				b = &topicBucket{}
				counter[t.Topic] = b
				order = append(order, t.Topic)
			}
			b.total += t.Total
			b.correct += t.Correct
			b.wrong += t.Wrong
		}
	}

	totalWrong := 0
	for _, b := range counter {
		totalWrong += b.wrong
	}

	stats := make([]models.TopicStat, 0, len(order))
	for _, topic := range order {
		stats = append(stats, topicStat(topic, counter[topic], totalWrong))
	}

	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].FocusPercent > stats[j].FocusPercent
	})

	return stats
}
