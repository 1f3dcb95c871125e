package worker

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/Karthikeyadusa/Attendly-sub000/internal/aiclient"
	"github.com/Karthikeyadusa/Attendly-sub000/internal/queue"
)

// Run consumes extraction jobs until the context ends. It is shared by the
// standalone worker binary and the API's in-process loop.
func Run(ctx context.Context, ai *aiclient.Client, q queue.Queue, results queue.ResultStore) error {
	jobs, err := q.Consume(ctx)
	if err != nil {
		return err
	}
	for job := range jobs {
		Process(ctx, ai, results, job)
	}
	return nil
}

// Process runs one extraction job and records its outcome.
func Process(ctx context.Context, ai *aiclient.Client, results queue.ResultStore, job queue.Job) {
	log.Info().Str("job_id", job.ID).Str("kind", job.Kind).Msg("processing extraction job")

	var (
		data any
		err  error
	)
	switch job.Kind {
	case queue.KindTimetable:
		data, err = ai.ExtractTimetable(ctx, job.Payload)
	case queue.KindQuestions:
		data, err = ai.ExtractQuestions(ctx, job.Payload)
	default:
		log.Warn().Str("job_id", job.ID).Str("kind", job.Kind).Msg("unknown job kind")
		return
	}

	res := queue.Result{JobID: job.ID, Kind: job.Kind}
	if err != nil {
		res.Status = queue.ResultFailed
		res.Error = err.Error()
		log.Warn().Err(err).Str("job_id", job.ID).Msg("extraction failed")
	} else {
		payload, merr := json.Marshal(data)
		if merr != nil {
			res.Status = queue.ResultFailed
			res.Error = merr.Error()
		} else {
			res.Status = queue.ResultDone
			res.Data = payload
		}
	}

	if err := results.Put(ctx, res); err != nil {
		log.Error().Err(err).Str("job_id", job.ID).Msg("result store put failed")
	}
}
