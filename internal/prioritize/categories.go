package prioritize

import (
	"time"

	"teamtasks/internal/models"
	"teamtasks/internal/utils"
)

type Bucket string

const (
	BucketOverdue        Bucket = "overdue"
	BucketDueToday       Bucket = "dueToday"
	BucketStartedLate    Bucket = "startedLate"
	BucketStartingToday  Bucket = "startingToday"
	BucketInProgress     Bucket = "inProgress"
	BucketCompletedToday Bucket = "completedToday"
)

// Buckets lists the dashboard buckets in claim order.
var Buckets = []Bucket{
	BucketOverdue, BucketDueToday, BucketStartedLate,
	BucketStartingToday, BucketInProgress, BucketCompletedToday,
}

type Categories map[Bucket][]models.Task

// Categorize partitions tasks into the dashboard buckets. A task lands in the
// first bucket it matches and in no other; tasks matching none are dropped.
func Categorize(tasks []models.Task, now time.Time) Categories {
	out := make(Categories, len(Buckets))
	for _, b := range Buckets {
		out[b] = []models.Task{}
	}
	for _, t := range tasks {
		if t.IsDeleted {
			continue
		}
		if b, ok := bucketOf(t, now); ok {
			out[b] = append(out[b], t)
		}
	}
	return out
}

func bucketOf(t models.Task, now time.Time) (Bucket, bool) {
	done := t.Status == models.StatusCompleted
	start := t.StartDate.In(now.Location())
	end := t.EndDate.In(now.Location())

	switch {
	case isOverdue(t, now):
		return BucketOverdue, true
	case !done && utils.SameDay(now, end):
		return BucketDueToday, true
	case t.Status == models.StatusNotStarted && utils.DayBefore(start, now):
		return BucketStartedLate, true
	case !done && utils.SameDay(now, start):
		return BucketStartingToday, true
	case t.Status == models.StatusInProgress:
		return BucketInProgress, true
	case done && t.CompletedAt != nil && utils.SameDay(now, *t.CompletedAt):
		return BucketCompletedToday, true
	}
	return "", false
}
